package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniketwaliyan/dwh-etl/internal/load"
	"github.com/aniketwaliyan/dwh-etl/internal/payable"
	"github.com/aniketwaliyan/dwh-etl/internal/purchasing"
	"github.com/aniketwaliyan/dwh-etl/internal/utils/config"
)

func TestGenerateProducesValidConfig(t *testing.T) {
	t.Setenv("MONGO_DB", "purchasing")

	for _, kind := range []string{config.KindPurchasing, config.KindPayable} {
		t.Run(kind, func(t *testing.T) {
			root := t.TempDir()
			g := NewGenerator("nightly-"+kind, kind)
			g.Root = root
			require.NoError(t, g.Generate())

			assert.FileExists(t, filepath.Join(root, ".env.template"))
			assert.FileExists(t, filepath.Join(root, "pipelines", "nightly-"+kind, "README.md"))

			cfg, err := validateConfig(filepath.Join(root, "pipelines", "nightly-"+kind, "config.yaml"))
			require.NoError(t, err)
			assert.Equal(t, "nightly-"+kind, cfg.Pipeline.Name)
			assert.Equal(t, kind, cfg.Pipeline.Kind)
			assert.Equal(t, "purchasing", cfg.Source.Database)
		})
	}
}

func TestGenerateKeepsExistingEnvTemplate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.template"), []byte("MONGO_DB=x\n"), 0o644))

	g := NewGenerator("p", config.KindPayable)
	g.Root = root
	require.NoError(t, g.Generate())

	b, err := os.ReadFile(filepath.Join(root, ".env.template"))
	require.NoError(t, err)
	assert.Equal(t, "MONGO_DB=x\n", string(b))
}

func TestGenerateUnknownKind(t *testing.T) {
	g := NewGenerator("p", "sales")
	g.Root = t.TempDir()
	assert.EqualError(t, g.Generate(), `unknown pipeline kind "sales"`)
}

func TestNewBuilder(t *testing.T) {
	cfg := &config.PipelineConfig{}
	cfg.Pipeline.Kind = config.KindPurchasing
	cfg.Sink.Type = "sqlserver"
	cfg.Sink.Table = purchasing.Table
	cfg.Sink.Style = config.StyleUnion

	b, err := newBuilder(cfg)
	require.NoError(t, err)
	ub, ok := b.(load.UnionBuilder)
	require.True(t, ok)
	assert.Equal(t, load.SQLServer.Name, ub.Dialect.Name)
	assert.Equal(t, purchasing.Table, ub.Table)

	cfg.Sink.Parameterized = true
	b, err = newBuilder(cfg)
	require.NoError(t, err)
	assert.Equal(t, purchasing.Columns(), b.(load.ParamBuilder).Columns)
	assert.False(t, b.(load.ParamBuilder).Counter)

	cfg.Pipeline.Kind = config.KindPayable
	cfg.Sink.Parameterized = false
	cfg.Sink.Style = config.StyleValues
	cfg.Sink.Type = "postgres"
	b, err = newBuilder(cfg)
	require.NoError(t, err)
	vb := b.(load.ValuesBuilder)
	assert.Equal(t, load.Postgres.Name, vb.Dialect.Name)
	assert.Equal(t, payable.Columns(), vb.Columns)
	assert.True(t, vb.Counter)

	cfg.Sink.Type = "oracle"
	_, err = newBuilder(cfg)
	assert.EqualError(t, err, `unsupported sink type "oracle"`)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "schedule", "validate", "generate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
