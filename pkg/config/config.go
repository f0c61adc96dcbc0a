package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for weld-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (connection credentials) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8099"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Relationship analysis tuning
	Analysis AnalysisConfig `yaml:"analysis"`

	// Connected data sources the engine may profile
	Datasources []DatasourceEntry `yaml:"datasources"`
}

// AnalysisConfig holds the tuning knobs for the relationship analysis engine.
type AnalysisConfig struct {
	// SampleLimit caps the number of rows fetched per data source during profiling.
	SampleLimit int `yaml:"sample_limit" env:"ANALYSIS_SAMPLE_LIMIT" env-default:"1000"`

	// SampleValueCount is how many distinct values are retained per column for display.
	SampleValueCount int `yaml:"sample_value_count" env:"ANALYSIS_SAMPLE_VALUE_COUNT" env-default:"10"`

	// ProfileConcurrency bounds how many data source fetches run in flight at once.
	ProfileConcurrency int `yaml:"profile_concurrency" env:"ANALYSIS_PROFILE_CONCURRENCY" env-default:"4"`

	// ProfileTimeoutSeconds bounds each per-datasource schema/sample fetch.
	ProfileTimeoutSeconds int `yaml:"profile_timeout_seconds" env:"ANALYSIS_PROFILE_TIMEOUT_SECONDS" env-default:"30"`

	// AutoSelectThreshold is the confidence above which suggestions are
	// auto-activated for graph layout and plan synthesis.
	AutoSelectThreshold float64 `yaml:"auto_select_threshold" env:"ANALYSIS_AUTO_SELECT_THRESHOLD" env-default:"0.8"`

	// NameSimilarityThreshold is the minimum normalized edit-distance
	// similarity for the type-compatible fallback match rule.
	NameSimilarityThreshold float64 `yaml:"name_similarity_threshold" env:"ANALYSIS_NAME_SIMILARITY_THRESHOLD" env-default:"0.6"`

	// MaxJoinPlans caps how many alternative plans are synthesized.
	MaxJoinPlans int `yaml:"max_join_plans" env:"ANALYSIS_MAX_JOIN_PLANS" env-default:"3"`

	// RowEstimateCeiling caps many-to-many row estimates to keep them bounded.
	RowEstimateCeiling int64 `yaml:"row_estimate_ceiling" env:"ANALYSIS_ROW_ESTIMATE_CEILING" env-default:"10000000"`
}

// DatasourceEntry describes one connected data source.
// Exactly one of DSN or Path is used depending on the connector type.
type DatasourceEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"` // postgres, mssql, file

	// DSN is the connection string for database-backed connectors.
	DSN string `yaml:"dsn"`
	// Table is the table to profile for database-backed connectors.
	Table string `yaml:"table"`
	// Schema is the database schema the table lives in (defaults per dialect).
	Schema string `yaml:"schema"`

	// Path is the fixture file for file-backed connectors (YAML or JSON).
	Path string `yaml:"path"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFrom reads configuration from an explicit path. Used by tests.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks analysis bounds and datasource entries.
func (c *Config) Validate() error {
	if c.Analysis.SampleLimit <= 0 {
		return fmt.Errorf("analysis.sample_limit must be positive, got %d", c.Analysis.SampleLimit)
	}
	if c.Analysis.ProfileConcurrency <= 0 {
		return fmt.Errorf("analysis.profile_concurrency must be positive, got %d", c.Analysis.ProfileConcurrency)
	}
	if c.Analysis.AutoSelectThreshold < 0 || c.Analysis.AutoSelectThreshold > 1 {
		return fmt.Errorf("analysis.auto_select_threshold must be in [0,1], got %f", c.Analysis.AutoSelectThreshold)
	}
	if c.Analysis.NameSimilarityThreshold < 0 || c.Analysis.NameSimilarityThreshold > 1 {
		return fmt.Errorf("analysis.name_similarity_threshold must be in [0,1], got %f", c.Analysis.NameSimilarityThreshold)
	}
	if c.Analysis.MaxJoinPlans <= 0 {
		return fmt.Errorf("analysis.max_join_plans must be positive, got %d", c.Analysis.MaxJoinPlans)
	}

	seen := make(map[string]bool)
	for i, ds := range c.Datasources {
		if ds.ID == "" {
			return fmt.Errorf("datasources[%d]: id is required", i)
		}
		if seen[ds.ID] {
			return fmt.Errorf("datasources[%d]: duplicate id %q", i, ds.ID)
		}
		seen[ds.ID] = true

		switch ds.Type {
		case "postgres", "mssql":
			if ds.DSN == "" || ds.Table == "" {
				return fmt.Errorf("datasource %q: dsn and table are required for type %q", ds.ID, ds.Type)
			}
		case "file":
			if ds.Path == "" {
				return fmt.Errorf("datasource %q: path is required for type file", ds.ID)
			}
		default:
			return fmt.Errorf("datasource %q: unknown type %q", ds.ID, ds.Type)
		}
	}

	return nil
}
