package models

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
// Join Types
// ============================================================================

// JoinType is the SQL join flavor a step should execute with.
type JoinType string

const (
	JoinTypeInner JoinType = "inner"
	JoinTypeLeft  JoinType = "left"
)

// ValidJoinTypes contains all valid join type values.
var ValidJoinTypes = []JoinType{
	JoinTypeInner,
	JoinTypeLeft,
}

// IsValidJoinType checks if the given join type is valid.
func IsValidJoinType(j JoinType) bool {
	return slices.Contains(ValidJoinTypes, j)
}

// ============================================================================
// Performance Classes
// ============================================================================

// PerformanceClass is the coarse cost classification of a join plan.
type PerformanceClass string

const (
	PerformanceFast     PerformanceClass = "fast"
	PerformanceModerate PerformanceClass = "moderate"
	PerformanceSlow     PerformanceClass = "slow"
)

// ValidPerformanceClasses contains all valid performance class values.
var ValidPerformanceClasses = []PerformanceClass{
	PerformanceFast,
	PerformanceModerate,
	PerformanceSlow,
}

// IsValidPerformanceClass checks if the given class is valid.
func IsValidPerformanceClass(p PerformanceClass) bool {
	return slices.Contains(ValidPerformanceClasses, p)
}

// ============================================================================
// Join Step
// ============================================================================

// JoinStep is one edge of a synthesized plan, ordered by StepNumber from 1.
// The first step has no LeftDataSourceID; it names the plan root implicitly.
type JoinStep struct {
	StepNumber        int               `json:"step_number"`
	LeftDataSourceID  string            `json:"left_data_source_id,omitempty"`
	RightDataSourceID string            `json:"right_data_source_id"`
	Relationship      *RelationshipLink `json:"relationship"`
	JoinType          JoinType          `json:"join_type"`
	EstimatedRows     int64             `json:"estimated_rows"`
	IsIntermediate    bool              `json:"is_intermediate"`
}

// ============================================================================
// Complex Join Plan
// ============================================================================

// ComplexJoinPlan is a totally ordered join sequence connecting every
// selected data source exactly once. Invariant: the RightDataSourceID set
// across all steps plus the implicit root equals the selected set.
type ComplexJoinPlan struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	RootDataSourceID string           `json:"root_data_source_id"`
	ExecutionOrder   []JoinStep       `json:"execution_order"`
	EstimatedRows    int64            `json:"estimated_rows"`
	Complexity       int              `json:"complexity"`
	Performance      PerformanceClass `json:"performance"`
	IsValid          bool             `json:"is_valid"`
	ValidationErrors []string         `json:"validation_errors,omitempty"`
}

// CoveredDataSources returns the root plus every step's right side, in order.
func (p *ComplexJoinPlan) CoveredDataSources() []string {
	covered := make([]string, 0, len(p.ExecutionOrder)+1)
	covered = append(covered, p.RootDataSourceID)
	for _, step := range p.ExecutionOrder {
		covered = append(covered, step.RightDataSourceID)
	}
	return covered
}

// Signature returns a stable identity for the plan's edge sequence,
// used for deduplicating alternative plans and deriving plan IDs.
func (p *ComplexJoinPlan) Signature() string {
	parts := make([]string, 0, len(p.ExecutionOrder)+1)
	parts = append(parts, p.RootDataSourceID)
	for _, step := range p.ExecutionOrder {
		if step.Relationship != nil {
			parts = append(parts, step.Relationship.Key())
		} else {
			parts = append(parts, step.RightDataSourceID)
		}
	}
	return strings.Join(parts, "|")
}

// PlanID derives a deterministic UUID from a plan signature.
func PlanID(signature string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("join-plan:"+signature))
}

// ============================================================================
// Analysis Result
// ============================================================================

// RelationshipAnalysisResult is the aggregate, purely derived output of one
// analysis call. It has no lifecycle beyond the call.
type RelationshipAnalysisResult struct {
	Relationships      []*RelationshipSuggestion `json:"relationships"`
	DataSourceAnalysis []*DataSourceAnalysis     `json:"data_source_analysis"`
	JoinPlans          []*ComplexJoinPlan        `json:"join_plans"`
	TreeLayout         *TreeLayout               `json:"tree_layout"`
}

// EmptyAnalysisResult returns a result with empty, non-nil collections.
// Used when fewer than two data sources survive selection or profiling.
func EmptyAnalysisResult() *RelationshipAnalysisResult {
	return &RelationshipAnalysisResult{
		Relationships:      []*RelationshipSuggestion{},
		DataSourceAnalysis: []*DataSourceAnalysis{},
		JoinPlans:          []*ComplexJoinPlan{},
		TreeLayout:         &TreeLayout{Nodes: []TreeNode{}, Edges: []TreeEdge{}},
	}
}
