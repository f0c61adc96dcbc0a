package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/logging"
)

func init() {
	datasource.Register("postgres", func(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (datasource.Connector, error) {
		return NewConnector(ctx, entry, logger)
	})
}

// qualifiedTableName returns a properly quoted table reference.
// If schemaName is empty, the table is looked up on the search path.
func qualifiedTableName(schemaName, tableName string) string {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	if schemaName == "" {
		return quotedTable
	}
	return pgx.Identifier{schemaName}.Sanitize() + "." + quotedTable
}

// Connector profiles a single PostgreSQL-backed table.
type Connector struct {
	pool   *pgxpool.Pool
	name   string
	schema string
	table  string
	logger *zap.Logger
}

var _ datasource.Connector = (*Connector)(nil)

// NewConnector opens a pooled connection for the configured table.
func NewConnector(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, entry.DSN)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool for %s: %w", logging.SanitizeConnectionString(entry.DSN), err)
	}

	schema := entry.Schema
	if schema == "" {
		schema = "public"
	}

	name := entry.Name
	if name == "" {
		name = entry.Table
	}

	return &Connector{
		pool:   pool,
		name:   name,
		schema: schema,
		table:  entry.Table,
		logger: logger.Named("postgres-connector"),
	}, nil
}

// GetSchema implements datasource.Connector.
func (c *Connector) GetSchema(ctx context.Context) (*datasource.Schema, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`,
		c.schema, c.table)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s.%s: %w", c.schema, c.table, err)
	}
	defer rows.Close()

	schema := &datasource.Schema{Name: c.name}
	for rows.Next() {
		var col datasource.SchemaColumn
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}

	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns or does not exist", c.schema, c.table)
	}

	return schema, nil
}

// FetchSample implements datasource.Connector.
func (c *Connector) FetchSample(ctx context.Context, limit int) ([]datasource.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", qualifiedTableName(c.schema, c.table), limit)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s.%s: %w", c.schema, c.table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	sample := make([]datasource.Row, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read sample row: %w", err)
		}
		row := make(datasource.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		sample = append(sample, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	c.logger.Debug("fetched sample",
		zap.String("table", c.table),
		zap.Int("rows", len(sample)))

	return sample, nil
}

// Close implements datasource.Connector.
func (c *Connector) Close() error {
	c.pool.Close()
	return nil
}
