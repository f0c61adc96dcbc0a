package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "env: test\n")

	cfg, err := LoadFrom(path, "v1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8099", cfg.Port)
	assert.Equal(t, 1000, cfg.Analysis.SampleLimit)
	assert.Equal(t, 4, cfg.Analysis.ProfileConcurrency)
	assert.InDelta(t, 0.8, cfg.Analysis.AutoSelectThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Analysis.MaxJoinPlans)
	assert.Equal(t, int64(10000000), cfg.Analysis.RowEstimateCeiling)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "analysis:\n  sample_limit: 200\n")

	t.Setenv("ANALYSIS_SAMPLE_LIMIT", "500")
	t.Setenv("ANALYSIS_MAX_JOIN_PLANS", "5")

	cfg, err := LoadFrom(path, "dev")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Analysis.SampleLimit, "env must override YAML")
	assert.Equal(t, 5, cfg.Analysis.MaxJoinPlans)
}

func TestLoadDatasources(t *testing.T) {
	path := writeConfigFile(t, `
datasources:
  - id: orders
    name: Orders
    type: file
    path: testdata/orders.yaml
  - id: warehouse
    name: Warehouse
    type: postgres
    dsn: postgres://weld@localhost:5432/warehouse
    table: shipments
`)

	cfg, err := LoadFrom(path, "dev")
	require.NoError(t, err)
	require.Len(t, cfg.Datasources, 2)

	assert.Equal(t, "orders", cfg.Datasources[0].ID)
	assert.Equal(t, "file", cfg.Datasources[0].Type)
	assert.Equal(t, "shipments", cfg.Datasources[1].Table)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "duplicate datasource id",
			yaml: `
datasources:
  - id: a
    type: file
    path: a.yaml
  - id: a
    type: file
    path: b.yaml
`,
		},
		{
			name: "unknown connector type",
			yaml: `
datasources:
  - id: a
    type: oracle
    dsn: x
`,
		},
		{
			name: "postgres without table",
			yaml: `
datasources:
  - id: a
    type: postgres
    dsn: postgres://localhost/x
`,
		},
		{
			name: "threshold out of range",
			yaml: `
analysis:
  auto_select_threshold: 1.5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := LoadFrom(path, "dev")
			assert.Error(t, err)
		})
	}
}
