package models

import (
	"slices"

	"github.com/google/uuid"
)

// ============================================================================
// Match Types
// ============================================================================

// MatchType represents how a candidate column pairing was matched.
type MatchType string

const (
	MatchTypeExact      MatchType = "exact"
	MatchTypeSimilar    MatchType = "similar"
	MatchTypeCompatible MatchType = "compatible"
)

// ValidMatchTypes contains all valid match type values.
var ValidMatchTypes = []MatchType{
	MatchTypeExact,
	MatchTypeSimilar,
	MatchTypeCompatible,
}

// IsValidMatchType checks if the given match type is valid.
func IsValidMatchType(m MatchType) bool {
	return slices.Contains(ValidMatchTypes, m)
}

// ============================================================================
// Relationship Types
// ============================================================================

// RelationshipType is the cardinality of a relationship, read source to target.
type RelationshipType string

const (
	RelationshipOneToOne   RelationshipType = "one_to_one"
	RelationshipOneToMany  RelationshipType = "one_to_many"
	RelationshipManyToOne  RelationshipType = "many_to_one"
	RelationshipManyToMany RelationshipType = "many_to_many"
)

// ValidRelationshipTypes contains all valid relationship type values.
var ValidRelationshipTypes = []RelationshipType{
	RelationshipOneToOne,
	RelationshipOneToMany,
	RelationshipManyToOne,
	RelationshipManyToMany,
}

// IsValidRelationshipType checks if the given relationship type is valid.
func IsValidRelationshipType(t RelationshipType) bool {
	return slices.Contains(ValidRelationshipTypes, t)
}

// Reverse returns the relationship type for the reverse direction.
// one_to_many becomes many_to_one and vice versa; symmetric types are unchanged.
func (t RelationshipType) Reverse() RelationshipType {
	switch t {
	case RelationshipOneToMany:
		return RelationshipManyToOne
	case RelationshipManyToOne:
		return RelationshipOneToMany
	default:
		return t
	}
}

// ============================================================================
// Column Match
// ============================================================================

// ColumnMatch is a transient candidate pairing between two columns.
// It is consumed immediately by the inferencer and not retained.
type ColumnMatch struct {
	SourceColumn string     `json:"source_column"`
	TargetColumn string     `json:"target_column"`
	DataType     ColumnType `json:"data_type"`
	MatchType    MatchType  `json:"match_type"`
	Confidence   float64    `json:"confidence"`

	SourceSamples []string `json:"source_samples,omitempty"`
	TargetSamples []string `json:"target_samples,omitempty"`
}

// ============================================================================
// Relationship Suggestion
// ============================================================================

// RelationshipSuggestion is a proposed join key between two data sources.
// Invariants: Confidence is in [0,1]; source and target data source IDs differ.
type RelationshipSuggestion struct {
	ID                 uuid.UUID        `json:"id"`
	SourceDataSourceID string           `json:"source_data_source_id"`
	TargetDataSourceID string           `json:"target_data_source_id"`
	SourceColumn       string           `json:"source_column"`
	TargetColumn       string           `json:"target_column"`
	SourceTableName    string           `json:"source_table_name"`
	TargetTableName    string           `json:"target_table_name"`
	RelationshipType   RelationshipType `json:"relationship_type"`
	Confidence         float64          `json:"confidence"`
	Reasoning          string           `json:"reasoning"`
	IsActive           bool             `json:"is_active"`
}

// Key returns a stable identity for the ordered column pair of this suggestion.
func (s *RelationshipSuggestion) Key() string {
	return s.SourceDataSourceID + "." + s.SourceColumn + "->" + s.TargetDataSourceID + "." + s.TargetColumn
}

// SuggestionID derives a deterministic UUID for an ordered column pair.
// Deterministic IDs keep repeated analysis runs byte-identical for the UI.
func SuggestionID(sourceID, sourceColumn, targetID, targetColumn string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sourceID+"."+sourceColumn+"->"+targetID+"."+targetColumn))
}

// ============================================================================
// Relationship Link
// ============================================================================

// RelationshipLink is the activated form of a suggestion selected for
// graph and plan construction. JoinCondition is a column-equality expression.
type RelationshipLink struct {
	RelationshipSuggestion
	JoinCondition string `json:"join_condition"`
}
