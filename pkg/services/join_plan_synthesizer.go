package services

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/models"
	enginesql "github.com/weldhq/weld-engine/pkg/sql"
)

// JoinPlanSynthesizer turns the relationship backbone into ranked,
// validated multi-step join plans. Pure and deterministic.
type JoinPlanSynthesizer interface {
	SynthesizePlans(analyses []*models.DataSourceAnalysis, suggestions []*models.RelationshipSuggestion) []*models.ComplexJoinPlan
}

type joinPlanSynthesizer struct {
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

var _ JoinPlanSynthesizer = (*joinPlanSynthesizer)(nil)

// NewJoinPlanSynthesizer creates a new JoinPlanSynthesizer.
func NewJoinPlanSynthesizer(cfg config.AnalysisConfig, logger *zap.Logger) JoinPlanSynthesizer {
	return &joinPlanSynthesizer{
		cfg:    cfg,
		logger: logger.Named("join-plan-synthesizer"),
	}
}

func (s *joinPlanSynthesizer) SynthesizePlans(analyses []*models.DataSourceAnalysis, suggestions []*models.RelationshipSuggestion) []*models.ComplexJoinPlan {
	if len(analyses) == 0 {
		return []*models.ComplexJoinPlan{}
	}

	nodeIDs := make([]string, 0, len(analyses))
	byID := make(map[string]*models.DataSourceAnalysis, len(analyses))
	for _, a := range analyses {
		nodeIDs = append(nodeIDs, a.DataSourceID)
		byID[a.DataSourceID] = a
	}

	active := activeSuggestions(suggestions)

	primary := maxSpanningBackbone(nodeIDs, active, nil)
	primaryConfidence := backboneConfidence(active, primary)

	plans := []*models.ComplexJoinPlan{}
	seen := map[string]bool{}

	appendPlan := func(backbone map[string]bool) {
		plan := s.buildPlan(nodeIDs, byID, active, backbone)
		sig := plan.Signature()
		if seen[sig] {
			return
		}
		seen[sig] = true
		plans = append(plans, plan)
	}

	appendPlan(primary)

	// Alternative plans substitute a tied edge into the backbone. Only
	// substitutions that preserve the total backbone confidence describe an
	// equally good spanning tree.
	for _, alt := range active {
		if len(plans) >= s.cfg.MaxJoinPlans {
			break
		}
		if primary[alt.Key()] {
			continue
		}
		forced := maxSpanningBackbone(nodeIDs, active, map[string]bool{alt.Key(): true})
		if !forced[alt.Key()] {
			continue
		}
		if backboneConfidence(active, forced) != primaryConfidence {
			continue
		}
		appendPlan(forced)
	}

	rankPlans(plans)
	for i, plan := range plans {
		plan.Name = fmt.Sprintf("Join Plan %d", i+1)
	}

	s.logger.Debug("synthesized join plans",
		zap.Int("plans", len(plans)),
		zap.Int("active_suggestions", len(active)))

	return plans
}

// planEdge is one traversable backbone edge with its originating suggestion.
type planEdge struct {
	neighbor   string
	suggestion *models.RelationshipSuggestion
}

// buildPlan runs a BFS over the backbone from the component root and emits
// one numbered JoinStep per traversed edge.
func (s *joinPlanSynthesizer) buildPlan(
	nodeIDs []string,
	byID map[string]*models.DataSourceAnalysis,
	active []*models.RelationshipSuggestion,
	backbone map[string]bool,
) *models.ComplexJoinPlan {
	adjacency := make(map[string][]planEdge)
	for _, sg := range active {
		if !backbone[sg.Key()] {
			continue
		}
		adjacency[sg.SourceDataSourceID] = append(adjacency[sg.SourceDataSourceID], planEdge{sg.TargetDataSourceID, sg})
		adjacency[sg.TargetDataSourceID] = append(adjacency[sg.TargetDataSourceID], planEdge{sg.SourceDataSourceID, sg})
	}

	root := planRoot(nodeIDs, active, backbone)

	plan := &models.ComplexJoinPlan{
		RootDataSourceID: root,
		ExecutionOrder:   []models.JoinStep{},
	}

	estimate := recordCount(byID, root)
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range adjacency[current] {
			if visited[edge.neighbor] {
				continue
			}
			visited[edge.neighbor] = true
			queue = append(queue, edge.neighbor)

			link := s.orientLink(edge.suggestion, current)
			estimate = s.estimateRows(estimate, recordCount(byID, edge.neighbor), link.RelationshipType)

			step := models.JoinStep{
				StepNumber:        len(plan.ExecutionOrder) + 1,
				RightDataSourceID: edge.neighbor,
				Relationship:      link,
				JoinType:          models.JoinTypeInner,
				EstimatedRows:     estimate,
			}
			if step.StepNumber > 1 {
				step.LeftDataSourceID = current
			}
			plan.ExecutionOrder = append(plan.ExecutionOrder, step)
		}
	}

	// Every step except the final one produces an intermediate result.
	for i := range plan.ExecutionOrder {
		plan.ExecutionOrder[i].IsIntermediate = i < len(plan.ExecutionOrder)-1
	}

	plan.EstimatedRows = estimate
	plan.Complexity = len(plan.ExecutionOrder)
	plan.Performance = classifyPerformance(plan.ExecutionOrder)
	s.validatePlan(plan, nodeIDs, visited)
	plan.ID = models.PlanID(plan.Signature())

	return plan
}

// orientLink returns the relationship as a link read left-to-right from the
// traversal parent, reversing the stored direction when needed.
func (s *joinPlanSynthesizer) orientLink(sg *models.RelationshipSuggestion, parent string) *models.RelationshipLink {
	oriented := *sg
	if sg.SourceDataSourceID != parent {
		oriented.SourceDataSourceID, oriented.TargetDataSourceID = sg.TargetDataSourceID, sg.SourceDataSourceID
		oriented.SourceColumn, oriented.TargetColumn = sg.TargetColumn, sg.SourceColumn
		oriented.SourceTableName, oriented.TargetTableName = sg.TargetTableName, sg.SourceTableName
		oriented.RelationshipType = sg.RelationshipType.Reverse()
	}

	condition, err := enginesql.JoinCondition(
		oriented.SourceTableName, oriented.SourceColumn,
		oriented.TargetTableName, oriented.TargetColumn)
	if err != nil {
		s.logger.Warn("join condition rejected",
			zap.String("source_table", oriented.SourceTableName),
			zap.String("target_table", oriented.TargetTableName),
			zap.Error(err))
		condition = ""
	}

	return &models.RelationshipLink{
		RelationshipSuggestion: oriented,
		JoinCondition:          condition,
	}
}

// estimateRows applies the cardinality class to the running left-side
// estimate and the right side's record count.
func (s *joinPlanSynthesizer) estimateRows(left, right int64, relType models.RelationshipType) int64 {
	switch relType {
	case models.RelationshipOneToOne:
		return min(left, right)
	case models.RelationshipManyToOne:
		return left
	case models.RelationshipOneToMany:
		return right
	default:
		if right > 0 && left > s.cfg.RowEstimateCeiling/right {
			return s.cfg.RowEstimateCeiling
		}
		product := left * right
		if product > s.cfg.RowEstimateCeiling {
			return s.cfg.RowEstimateCeiling
		}
		return product
	}
}

// classifyPerformance buckets a plan by step count and many-to-many usage.
func classifyPerformance(steps []models.JoinStep) models.PerformanceClass {
	hasManyToMany := false
	for _, step := range steps {
		if step.Relationship != nil && step.Relationship.RelationshipType == models.RelationshipManyToMany {
			hasManyToMany = true
		}
	}

	switch {
	case len(steps) <= 2 && !hasManyToMany:
		return models.PerformanceFast
	case len(steps) <= 4:
		return models.PerformanceModerate
	default:
		return models.PerformanceSlow
	}
}

// validatePlan checks coverage and uniqueness of introduced data sources.
// An unreachable data source invalidates the plan but the partial plan is
// still returned so the caller can surface which one is missing.
func (s *joinPlanSynthesizer) validatePlan(plan *models.ComplexJoinPlan, nodeIDs []string, visited map[string]bool) {
	introduced := map[string]bool{plan.RootDataSourceID: true}
	for _, step := range plan.ExecutionOrder {
		if introduced[step.RightDataSourceID] {
			plan.ValidationErrors = append(plan.ValidationErrors,
				fmt.Sprintf("data source %q is introduced more than once", step.RightDataSourceID))
		}
		introduced[step.RightDataSourceID] = true
	}

	for _, id := range nodeIDs {
		if !visited[id] {
			plan.ValidationErrors = append(plan.ValidationErrors,
				fmt.Sprintf("data source %q is unreachable from the join graph", id))
		}
	}

	plan.IsValid = len(plan.ValidationErrors) == 0
}

// planRoot picks the data source with the highest total incident backbone
// confidence, falling back to input order.
func planRoot(nodeIDs []string, active []*models.RelationshipSuggestion, backbone map[string]bool) string {
	incident := make(map[string]float64)
	for _, sg := range active {
		if !backbone[sg.Key()] {
			continue
		}
		incident[sg.SourceDataSourceID] += sg.Confidence
		incident[sg.TargetDataSourceID] += sg.Confidence
	}

	root := nodeIDs[0]
	best := incident[root]
	for _, id := range nodeIDs {
		if incident[id] > best {
			root = id
			best = incident[id]
		}
	}
	return root
}

func backboneConfidence(active []*models.RelationshipSuggestion, backbone map[string]bool) float64 {
	total := 0.0
	for _, sg := range active {
		if backbone[sg.Key()] {
			total += sg.Confidence
		}
	}
	return total
}

// rankPlans orders valid plans first, then by ascending estimated rows,
// then by complexity, with the signature as the final deterministic key.
func rankPlans(plans []*models.ComplexJoinPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.IsValid != b.IsValid {
			return a.IsValid
		}
		if a.EstimatedRows != b.EstimatedRows {
			return a.EstimatedRows < b.EstimatedRows
		}
		if a.Complexity != b.Complexity {
			return a.Complexity < b.Complexity
		}
		return a.Signature() < b.Signature()
	})
}

func recordCount(byID map[string]*models.DataSourceAnalysis, id string) int64 {
	if a, ok := byID[id]; ok {
		return a.RecordCount
	}
	return 0
}
