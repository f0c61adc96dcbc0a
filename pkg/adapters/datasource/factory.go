package datasource

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/apperrors"
	"github.com/weldhq/weld-engine/pkg/config"
)

// ConnectorFactory builds a Connector for a configured data source entry.
type ConnectorFactory func(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (Connector, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]ConnectorFactory)
)

// Register is called by each connector package's init() function.
// Thread-safe for concurrent init() calls.
func Register(connectorType string, factory ConnectorFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[connectorType] = factory
}

// IsRegistered checks if a connector type is available.
func IsRegistered(connectorType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[connectorType]
	return ok
}

// NewConnector builds a connector for the entry using the registered factory.
func NewConnector(ctx context.Context, entry config.DatasourceEntry, logger *zap.Logger) (Connector, error) {
	registryMu.RLock()
	factory, ok := factories[entry.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("connector type %q: %w", entry.Type, apperrors.ErrUnsupportedConnector)
	}

	return factory(ctx, entry, logger)
}
