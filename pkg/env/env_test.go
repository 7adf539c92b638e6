package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		// Restored on cleanup.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadWithoutFile(t *testing.T) {
	unset(t, "SQLSERVER_HOST", "SQLSERVER_PORT", "SQLSERVER_USER", "SQLSERVER_DB", "LOG_LEVEL")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("SQLSERVER_PASSWORD", "secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "server=127.0.0.1;port=1433;user id=sa;password=secret;database=dwh;", cfg.SQLServerDSN())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	body := "POSTGRES_USER=loader\nPOSTGRES_PASSWORD=p@ss\nPOSTGRES_DB=warehouse\nPOSTGRES_HOST=db\nLOG_FORMAT=console\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600))
	unset(t, "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE", "LOG_FORMAT")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "postgres://loader:p%40ss@db:5432/warehouse?sslmode=disable", cfg.PostgresDSN())
}

func TestDSNFor(t *testing.T) {
	cfg := &Config{SQLServerHost: "h", SQLServerPort: "1", SQLServerUser: "u", SQLServerPassword: "p", SQLServerDB: "d"}

	dsn, err := cfg.DSNFor("sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "server=h;port=1;user id=u;password=p;database=d;", dsn)

	_, err = cfg.DSNFor("oracle")
	assert.EqualError(t, err, `no connection settings for sink type "oracle"`)

	cfg.WarehouseDSN = "override"
	dsn, err = cfg.DSNFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "override", dsn)
}
