package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/logging"
)

func init() {
	datasource.Register("mssql", func(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (datasource.Connector, error) {
		return NewConnector(entry, logger)
	})
}

// quoteIdentifier brackets a SQL Server identifier, escaping closing brackets.
func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Connector profiles a single SQL Server-backed table.
type Connector struct {
	db     *sql.DB
	name   string
	schema string
	table  string
	logger *zap.Logger
}

var _ datasource.Connector = (*Connector)(nil)

// NewConnector opens a connection for the configured table.
// The connection is validated lazily on first use.
func NewConnector(entry config.DatasourceEntry, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlserver", entry.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection for %s: %w", logging.SanitizeConnectionString(entry.DSN), err)
	}

	schema := entry.Schema
	if schema == "" {
		schema = "dbo"
	}

	name := entry.Name
	if name == "" {
		name = entry.Table
	}

	return &Connector{
		db:     db,
		name:   name,
		schema: schema,
		table:  entry.Table,
		logger: logger.Named("mssql-connector"),
	}, nil
}

// GetSchema implements datasource.Connector.
func (c *Connector) GetSchema(ctx context.Context) (*datasource.Schema, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`,
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
	query := fmt.Sprintf("SELECT TOP (%d) * FROM %s.%s",
		limit, quoteIdentifier(c.schema), quoteIdentifier(c.table))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s.%s: %w", c.schema, c.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read sample columns: %w", err)
	}

	sample := make([]datasource.Row, 0, limit)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		row := make(datasource.Row, len(columns))
		for i, name := range columns {
			// database/sql returns text columns as []byte
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
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
	return c.db.Close()
}
