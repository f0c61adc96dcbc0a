package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/apperrors"
	"github.com/weldhq/weld-engine/pkg/models"
)

// RelationshipAnalysisService orchestrates the full analysis pipeline:
// parallel profiling, relationship inference, then tree layout and join
// plan synthesis. Every call returns a fresh, independently owned result.
type RelationshipAnalysisService interface {
	// Analyze profiles the selected data sources and derives relationships,
	// a tree layout, and ranked join plans. A nil id list is a programming
	// error and fails fast; fewer than two ids returns an empty result.
	Analyze(ctx context.Context, projectID string, dataSourceIDs []string) (*models.RelationshipAnalysisResult, error)
}

type relationshipAnalysisService struct {
	profiler    SchemaProfiler
	inferencer  RelationshipInferencer
	graph       RelationshipGraphBuilder
	synthesizer JoinPlanSynthesizer
	logger      *zap.Logger
}

var _ RelationshipAnalysisService = (*relationshipAnalysisService)(nil)

// NewRelationshipAnalysisService creates a new RelationshipAnalysisService.
func NewRelationshipAnalysisService(
	profiler SchemaProfiler,
	inferencer RelationshipInferencer,
	graph RelationshipGraphBuilder,
	synthesizer JoinPlanSynthesizer,
	logger *zap.Logger,
) RelationshipAnalysisService {
	return &relationshipAnalysisService{
		profiler:    profiler,
		inferencer:  inferencer,
		graph:       graph,
		synthesizer: synthesizer,
		logger:      logger.Named("relationship-analysis"),
	}
}

func (s *relationshipAnalysisService) Analyze(ctx context.Context, projectID string, dataSourceIDs []string) (*models.RelationshipAnalysisResult, error) {
	if dataSourceIDs == nil {
		return nil, fmt.Errorf("data source id list is nil: %w", apperrors.ErrInvalidSelection)
	}
	if len(dataSourceIDs) < 2 {
		s.logger.Debug("fewer than two data sources selected",
			zap.String("project_id", projectID),
			zap.Int("selected", len(dataSourceIDs)))
		return models.EmptyAnalysisResult(), nil
	}

	analyses, err := s.profiler.ProfileDataSources(ctx, dataSourceIDs)
	if err != nil {
		return nil, fmt.Errorf("profile data sources: %w", err)
	}

	profiled := make([]*models.DataSourceAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a.IsProfiled() {
			profiled = append(profiled, a)
		}
	}
	if len(profiled) < 2 {
		s.logger.Warn("fewer than two data sources profiled successfully",
			zap.String("project_id", projectID),
			zap.Int("selected", len(dataSourceIDs)),
			zap.Int("profiled", len(profiled)))
		result := models.EmptyAnalysisResult()
		result.DataSourceAnalysis = analyses
		return result, nil
	}

	suggestions := s.inferencer.InferRelationships(analyses)
	annotateAnalyses(analyses, suggestions)

	result := &models.RelationshipAnalysisResult{
		Relationships:      suggestions,
		DataSourceAnalysis: analyses,
	}

	// Layout and plan synthesis both depend only on the suggestion list and
	// run on independent paths.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.TreeLayout = s.graph.BuildTreeLayout(analyses, suggestions)
	}()
	go func() {
		defer wg.Done()
		if len(suggestions) == 0 {
			result.JoinPlans = []*models.ComplexJoinPlan{}
			return
		}
		result.JoinPlans = s.synthesizer.SynthesizePlans(profiled, suggestions)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("analysis complete",
		zap.String("project_id", projectID),
		zap.Int("data_sources", len(analyses)),
		zap.Int("relationships", len(suggestions)),
		zap.Int("join_plans", len(result.JoinPlans)))

	return result, nil
}

// annotateAnalyses back-fills the per-column FK markers and per-dataset
// potential join lists from the accepted suggestions.
func annotateAnalyses(analyses []*models.DataSourceAnalysis, suggestions []*models.RelationshipSuggestion) {
	byID := make(map[string]*models.DataSourceAnalysis, len(analyses))
	for _, a := range analyses {
		byID[a.DataSourceID] = a
	}

	joinPartners := make(map[string]map[string]bool)
	for _, sg := range suggestions {
		source := byID[sg.SourceDataSourceID]
		target := byID[sg.TargetDataSourceID]
		if source == nil || target == nil {
			continue
		}

		if col := source.Column(sg.SourceColumn); col != nil {
			match := sg.TargetTableName + "." + sg.TargetColumn
			if !slices.Contains(col.PotentialMatches, match) {
				col.PotentialMatches = append(col.PotentialMatches, match)
			}
			// A many-side column pointing at a unique key is FK shaped.
			if sg.RelationshipType == models.RelationshipManyToOne {
				col.IsForeignKey = true
			}
		}

		if joinPartners[sg.SourceDataSourceID] == nil {
			joinPartners[sg.SourceDataSourceID] = make(map[string]bool)
		}
		joinPartners[sg.SourceDataSourceID][sg.TargetDataSourceID] = true
	}

	for _, a := range analyses {
		partners := joinPartners[a.DataSourceID]
		for _, other := range analyses {
			if partners[other.DataSourceID] {
				a.PotentialJoins = append(a.PotentialJoins, other.DataSourceID)
			}
		}
	}
}
