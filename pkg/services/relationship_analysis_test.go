package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/apperrors"
	"github.com/weldhq/weld-engine/pkg/models"
)

func newAnalysisService(access *fakeAccess) RelationshipAnalysisService {
	cfg := testAnalysisConfig()
	logger := zap.NewNop()
	return NewRelationshipAnalysisService(
		NewSchemaProfiler(access, access, cfg, logger),
		NewRelationshipInferencer(cfg, logger),
		NewRelationshipGraphBuilder(logger),
		NewJoinPlanSynthesizer(cfg, logger),
		logger,
	)
}

func TestAnalyzeOrdersCustomers(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	result, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
	require.NoError(t, err)
	require.NotNil(t, result)

	fk := findSuggestion(result.Relationships, "orders", "customer_id", "customers", "id")
	require.NotNil(t, fk)
	assert.Equal(t, models.RelationshipManyToOne, fk.RelationshipType)
	assert.GreaterOrEqual(t, fk.Confidence, 0.8)

	require.Len(t, result.DataSourceAnalysis, 2)
	orders := result.DataSourceAnalysis[0]
	assert.Contains(t, orders.PotentialJoins, "customers")
	customerID := orders.Column("customer_id")
	require.NotNil(t, customerID)
	assert.True(t, customerID.IsForeignKey)
	assert.NotEmpty(t, customerID.PotentialMatches)

	require.NotNil(t, result.TreeLayout)
	assert.Len(t, result.TreeLayout.Nodes, 2)
	assert.NotEmpty(t, result.TreeLayout.ActiveEdges())

	require.NotEmpty(t, result.JoinPlans)
	best := result.JoinPlans[0]
	assert.True(t, best.IsValid)
	assert.ElementsMatch(t, []string{"orders", "customers"}, best.CoveredDataSources())
}

func TestAnalyzeNilSelection(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	_, err := svc.Analyze(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)
}

func TestAnalyzeTooFewDataSources(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	result, err := svc.Analyze(context.Background(), "p1", []string{"orders"})
	require.NoError(t, err, "single selection is a normal precondition, not an error")
	require.NotNil(t, result)
	assert.Empty(t, result.Relationships)
	assert.Empty(t, result.JoinPlans)
	assert.Empty(t, result.TreeLayout.Edges)
}

func TestAnalyzeNoRelationships(t *testing.T) {
	access := newFakeAccess()
	access.add("weather", "Weather", []string{"temperature"}, []datasource.Row{{"temperature": 21.5}})
	access.add("recipes", "Recipes", []string{"flour_grams"}, []datasource.Row{{"flour_grams": "wheat"}})
	access.add("films", "Films", []string{"title"}, []datasource.Row{{"title": "Heat"}})

	svc := newAnalysisService(access)

	result, err := svc.Analyze(context.Background(), "p1", []string{"weather", "recipes", "films"})
	require.NoError(t, err, "no relationships is a valid outcome, not an error")
	assert.Empty(t, result.Relationships)
	assert.Empty(t, result.JoinPlans)
	assert.Empty(t, result.TreeLayout.Edges)
	assert.Len(t, result.TreeLayout.Nodes, 3)
}

func TestAnalyzeContinuesPastFailedProfile(t *testing.T) {
	access := ordersCustomersAccess()
	access.fail("broken", errors.New("timeout"))

	svc := newAnalysisService(access)

	result, err := svc.Analyze(context.Background(), "p1", []string{"orders", "broken", "customers"})
	require.NoError(t, err)

	require.Len(t, result.DataSourceAnalysis, 3)
	assert.Equal(t, models.ProfileStatusFailed, result.DataSourceAnalysis[1].Status)

	fk := findSuggestion(result.Relationships, "orders", "customer_id", "customers", "id")
	assert.NotNil(t, fk, "surviving data sources must still be analyzed")
}

func TestAnalyzeEmptyWhenProfilingLeavesOneSource(t *testing.T) {
	access := ordersCustomersAccess()
	access.fail("customers", errors.New("refused"))

	svc := newAnalysisService(access)

	result, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
	require.NoError(t, err)
	assert.Empty(t, result.Relationships)
	assert.Empty(t, result.JoinPlans)
	require.Len(t, result.DataSourceAnalysis, 2, "profiling outcomes are still reported")
}

func TestAnalyzeDeterministic(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	first, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
	require.NoError(t, err)

	for range 5 {
		again, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
		require.NoError(t, err)

		require.Len(t, again.Relationships, len(first.Relationships))
		for i := range first.Relationships {
			assert.Equal(t, first.Relationships[i].ID, again.Relationships[i].ID)
			assert.Equal(t, first.Relationships[i].Confidence, again.Relationships[i].Confidence)
		}

		require.Len(t, again.JoinPlans, len(first.JoinPlans))
		for i := range first.JoinPlans {
			assert.Equal(t, first.JoinPlans[i].ID, again.JoinPlans[i].ID)
			assert.Equal(t, first.JoinPlans[i].Signature(), again.JoinPlans[i].Signature())
		}
	}
}

func TestAnalyzeFreshResultPerCall(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	first, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "p1", []string{"orders", "customers"})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	if len(first.Relationships) > 0 && len(second.Relationships) > 0 {
		assert.NotSame(t, first.Relationships[0], second.Relationships[0])
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	svc := newAnalysisService(ordersCustomersAccess())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, "p1", []string{"orders", "customers"})
	assert.Error(t, err)
}
