package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/config"
)

func init() {
	datasource.Register("file", func(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (datasource.Connector, error) {
		return NewConnector(entry, logger)
	})
}

// fixture is the on-disk shape of a file-backed data source.
// Columns are optional; when omitted they are derived from the rows.
type fixture struct {
	Name    string           `yaml:"name" json:"name"`
	Columns []fixtureColumn  `yaml:"columns" json:"columns"`
	Rows    []map[string]any `yaml:"rows" json:"rows"`
}

type fixtureColumn struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Connector serves schema and samples from a YAML or JSON file on disk.
// Used for imported flat-file datasets and as the test connector.
type Connector struct {
	path   string
	name   string
	logger *zap.Logger
}

var _ datasource.Connector = (*Connector)(nil)

// NewConnector creates a file connector. The file is read on each call so
// re-imports are picked up without reopening the connector.
func NewConnector(entry config.DatasourceEntry, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if entry.Path == "" {
		return nil, fmt.Errorf("file connector requires a path")
	}

	return &Connector{
		path:   entry.Path,
		name:   entry.Name,
		logger: logger.Named("file-connector"),
	}, nil
}

func (c *Connector) load() (*fixture, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", c.path, err)
	}

	var f fixture
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode json fixture %s: %w", c.path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode yaml fixture %s: %w", c.path, err)
		}
	}

	return &f, nil
}

// GetSchema implements datasource.Connector.
func (c *Connector) GetSchema(ctx context.Context) (*datasource.Schema, error) {
	f, err := c.load()
	if err != nil {
		return nil, err
	}

	name := c.name
	if name == "" {
		name = f.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(c.path), filepath.Ext(c.path))
	}

	schema := &datasource.Schema{Name: name}

	if len(f.Columns) > 0 {
		for _, col := range f.Columns {
			schema.Columns = append(schema.Columns, datasource.SchemaColumn{Name: col.Name, Type: col.Type})
		}
		return schema, nil
	}

	// Derive columns from the union of row keys, sorted for stable output.
	seen := make(map[string]bool)
	for _, row := range f.Rows {
		for key := range row {
			seen[key] = true
		}
	}
	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("fixture %s declares no columns and has no rows", c.path)
	}

	for _, n := range names {
		schema.Columns = append(schema.Columns, datasource.SchemaColumn{Name: n})
	}
	return schema, nil
}

// FetchSample implements datasource.Connector.
func (c *Connector) FetchSample(ctx context.Context, limit int) ([]datasource.Row, error) {
	f, err := c.load()
	if err != nil {
		return nil, err
	}

	if limit > len(f.Rows) {
		limit = len(f.Rows)
	}

	sample := make([]datasource.Row, 0, limit)
	for _, row := range f.Rows[:limit] {
		sample = append(sample, datasource.Row(row))
	}

	c.logger.Debug("fetched sample",
		zap.String("path", c.path),
		zap.Int("rows", len(sample)))

	return sample, nil
}

// Close implements datasource.Connector.
func (c *Connector) Close() error {
	return nil
}
