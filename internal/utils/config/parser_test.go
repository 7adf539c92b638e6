package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParsePurchasingDefaults(t *testing.T) {
	path := write(t, `
pipeline:
  name: fact-pembelian
  kind: purchasing
  schedule: "0 1 * * *"
  timeout: 45m
source:
  type: mongodb
  database: purchasing
sink:
  type: sqlserver
`)
	cfg, err := NewParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "Fact Pembelian from MongoDB to Azure DWH", cfg.Pipeline.Description)
	assert.Equal(t, 45*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, "ag_fact_pembelian_temp", cfg.Sink.Table)
	assert.Equal(t, StyleUnion, cfg.Sink.Style)
	assert.Equal(t, 10000, cfg.Sink.ChunkSize)
	assert.Equal(t, []string{"AG_UPSERT_FACT_PEMBELIAN", "AG_INSERT_DIMTIME"}, cfg.Sink.Procedures)
	assert.Equal(t, []string{"dev", "unit-test"}, cfg.Source.ExcludedAuthors)
	assert.Equal(t, 16, cfg.Source.Concurrency)
	assert.Equal(t, "migration-log", cfg.Source.RunLogCollection)
	assert.Equal(t, "etl-locks", cfg.Source.LockCollection)
	assert.Equal(t, 50*time.Minute, cfg.Source.LockTTL)
}

func TestParsePayableOverrides(t *testing.T) {
	t.Setenv("HUTANG_TABLE", "staging.hutang")
	path := write(t, `
pipeline:
  name: fact-total-hutang
  kind: payable
source:
  type: mongodb
  database: purchasing
  excluded_authors: []
sink:
  type: postgres
  table: ${HUTANG_TABLE}
  chunk_size: 500
  procedures: [ag_upsert_fact_total_hutang]
  dump_path: ${DUMP_DIR_NOT_SET}/hutang.sql
`)
	cfg, err := NewParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "AG Fact Total Hutang from MongoDB to Azure DWH", cfg.Pipeline.Description)
	assert.Equal(t, "staging.hutang", cfg.Sink.Table)
	assert.Equal(t, StyleValues, cfg.Sink.Style)
	assert.Equal(t, 500, cfg.Sink.ChunkSize)
	assert.Equal(t, []string{"ag_upsert_fact_total_hutang"}, cfg.Sink.Procedures)
	assert.Empty(t, cfg.Source.ExcludedAuthors)
	assert.Equal(t, "${DUMP_DIR_NOT_SET}/hutang.sql", cfg.Sink.DumpPath)
	assert.Equal(t, 6*time.Hour, cfg.Source.LockTTL)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{
			name: "missing name",
			body: "pipeline: {kind: purchasing}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver}\n",
			msg:  "pipeline name is required",
		},
		{
			name: "unknown kind",
			body: "pipeline: {name: p, kind: sales}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver}\n",
			msg:  `pipeline kind must be "purchasing" or "payable", got "sales"`,
		},
		{
			name: "bad schedule",
			body: "pipeline: {name: p, kind: payable, schedule: every day}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver}\n",
			msg:  `invalid schedule "every day"`,
		},
		{
			name: "source type",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mysql, database: db}\nsink: {type: sqlserver}\n",
			msg:  `unsupported source type "mysql"`,
		},
		{
			name: "missing database",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mongodb}\nsink: {type: sqlserver}\n",
			msg:  "source database is required",
		},
		{
			name: "sink type",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mongodb, database: db}\nsink: {type: oracle}\n",
			msg:  `unsupported sink type "oracle"`,
		},
		{
			name: "style",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver, style: copy}\n",
			msg:  `sink style must be "union" or "values", got "copy"`,
		},
		{
			name: "payable union",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver, style: union}\n",
			msg:  `sink style "union" cannot fill the payable counter column`,
		},
		{
			name: "chunk size",
			body: "pipeline: {name: p, kind: payable}\nsource: {type: mongodb, database: db}\nsink: {type: sqlserver, chunk_size: -1}\n",
			msg:  "chunk size must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(write(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := NewParser().Parse(path)
	require.EqualError(t, err, "configuration file not found: "+path)
}

func TestParseShippedPipelines(t *testing.T) {
	t.Setenv("MONGO_DB", "purchasing")
	for _, name := range []string{"fact-pembelian", "fact-total-hutang"} {
		cfg, err := NewParser().Parse(filepath.Join("..", "..", "..", "pipelines", name, "config.yaml"))
		require.NoError(t, err, name)
		assert.Equal(t, name, cfg.Pipeline.Name)
		assert.Equal(t, "purchasing", cfg.Source.Database)
	}
}
