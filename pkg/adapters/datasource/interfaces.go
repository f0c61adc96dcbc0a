package datasource

import "context"

// Row is one sampled record from a data source.
type Row map[string]any

// SchemaColumn describes one column as reported by the data source.
type SchemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the declared shape of a data source.
type Schema struct {
	Name    string         `json:"name"`
	Columns []SchemaColumn `json:"columns"`
}

// SchemaAccess resolves the declared schema of a data source by ID.
// Provided by the surrounding data-source management layer; the analysis
// engine treats any error as a per-dataset profiling failure.
type SchemaAccess interface {
	GetSchema(ctx context.Context, dataSourceID string) (*Schema, error)
}

// SampleAccess fetches a bounded row sample from a data source by ID.
type SampleAccess interface {
	FetchSample(ctx context.Context, dataSourceID string, limit int) ([]Row, error)
}

// Connector provides schema and sample access for a single data source.
// Each implementation owns its connection and must be closed when done.
type Connector interface {
	// GetSchema returns the declared columns of the data source.
	GetSchema(ctx context.Context) (*Schema, error)

	// FetchSample returns up to limit rows from the data source.
	FetchSample(ctx context.Context, limit int) ([]Row, error)

	// Close releases the underlying connection.
	Close() error
}
