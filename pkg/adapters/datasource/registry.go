package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/apperrors"
	"github.com/weldhq/weld-engine/pkg/config"
)

// Registry exposes SchemaAccess and SampleAccess over the set of configured
// data sources, opening connectors lazily and caching them until Close.
type Registry struct {
	entries map[string]config.DatasourceEntry
	logger  *zap.Logger

	mu         sync.Mutex
	connectors map[string]Connector
}

var (
	_ SchemaAccess = (*Registry)(nil)
	_ SampleAccess = (*Registry)(nil)
)

// NewRegistry creates a registry over the configured data source entries.
func NewRegistry(entries []config.DatasourceEntry, logger *zap.Logger) *Registry {
	byID := make(map[string]config.DatasourceEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return &Registry{
		entries:    byID,
		logger:     logger.Named("datasource-registry"),
		connectors: make(map[string]Connector),
	}
}

// GetSchema implements SchemaAccess.
func (r *Registry) GetSchema(ctx context.Context, dataSourceID string) (*Schema, error) {
	conn, err := r.connector(ctx, dataSourceID)
	if err != nil {
		return nil, err
	}
	return conn.GetSchema(ctx)
}

// FetchSample implements SampleAccess.
func (r *Registry) FetchSample(ctx context.Context, dataSourceID string, limit int) ([]Row, error) {
	conn, err := r.connector(ctx, dataSourceID)
	if err != nil {
		return nil, err
	}
	return conn.FetchSample(ctx, limit)
}

// connector returns the cached connector for the data source, opening it on
// first use.
func (r *Registry) connector(ctx context.Context, dataSourceID string) (Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connectors[dataSourceID]; ok {
		return conn, nil
	}

	entry, ok := r.entries[dataSourceID]
	if !ok {
		return nil, fmt.Errorf("data source %q: %w", dataSourceID, apperrors.ErrNotFound)
	}

	conn, err := NewConnector(ctx, entry, r.logger)
	if err != nil {
		return nil, fmt.Errorf("open connector for %q: %w", dataSourceID, err)
	}

	r.logger.Info("opened datasource connector",
		zap.String("data_source_id", dataSourceID),
		zap.String("type", entry.Type))

	r.connectors[dataSourceID] = conn
	return conn, nil
}

// Close releases all cached connectors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, conn := range r.connectors {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connector %q: %w", id, err))
		}
		delete(r.connectors, id)
	}
	return errors.Join(errs...)
}
