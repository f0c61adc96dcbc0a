package services

import (
	"context"
	"fmt"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/config"
)

// fakeDataSource is an in-memory schema plus rows used across service tests.
type fakeDataSource struct {
	name    string
	columns []string
	rows    []datasource.Row
}

// fakeAccess implements datasource.SchemaAccess and datasource.SampleAccess
// over a fixed set of fake data sources.
type fakeAccess struct {
	sources map[string]fakeDataSource
	failing map[string]error
}

var (
	_ datasource.SchemaAccess = (*fakeAccess)(nil)
	_ datasource.SampleAccess = (*fakeAccess)(nil)
)

func newFakeAccess() *fakeAccess {
	return &fakeAccess{
		sources: make(map[string]fakeDataSource),
		failing: make(map[string]error),
	}
}

func (f *fakeAccess) add(id, name string, columns []string, rows []datasource.Row) {
	f.sources[id] = fakeDataSource{name: name, columns: columns, rows: rows}
}

func (f *fakeAccess) fail(id string, err error) {
	f.failing[id] = err
}

func (f *fakeAccess) GetSchema(ctx context.Context, dataSourceID string) (*datasource.Schema, error) {
	if err, ok := f.failing[dataSourceID]; ok {
		return nil, err
	}
	src, ok := f.sources[dataSourceID]
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", dataSourceID)
	}
	schema := &datasource.Schema{Name: src.name}
	for _, c := range src.columns {
		schema.Columns = append(schema.Columns, datasource.SchemaColumn{Name: c})
	}
	return schema, nil
}

func (f *fakeAccess) FetchSample(ctx context.Context, dataSourceID string, limit int) ([]datasource.Row, error) {
	if err, ok := f.failing[dataSourceID]; ok {
		return nil, err
	}
	src, ok := f.sources[dataSourceID]
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", dataSourceID)
	}
	if limit > len(src.rows) {
		limit = len(src.rows)
	}
	return src.rows[:limit], nil
}

// testAnalysisConfig mirrors the documented defaults.
func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		SampleLimit:             1000,
		SampleValueCount:        10,
		ProfileConcurrency:      4,
		ProfileTimeoutSeconds:   30,
		AutoSelectThreshold:     0.8,
		NameSimilarityThreshold: 0.6,
		MaxJoinPlans:            3,
		RowEstimateCeiling:      10_000_000,
	}
}

// ordersCustomersAccess builds the canonical two-dataset referential pair:
// every Orders.customer_id value appears in Customers.id, which is unique.
func ordersCustomersAccess() *fakeAccess {
	access := newFakeAccess()
	access.add("orders", "Orders",
		[]string{"order_id", "customer_id"},
		[]datasource.Row{
			{"order_id": 1, "customer_id": 10},
			{"order_id": 2, "customer_id": 11},
			{"order_id": 3, "customer_id": 10},
			{"order_id": 4, "customer_id": 12},
		})
	access.add("customers", "Customers",
		[]string{"id", "name"},
		[]datasource.Row{
			{"id": 10, "name": "Acme"},
			{"id": 11, "name": "Globex"},
			{"id": 12, "name": "Initech"},
		})
	return access
}
