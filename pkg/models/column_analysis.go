package models

import "slices"

// ============================================================================
// Column Types
// ============================================================================

// ColumnType is the inferred value type of a profiled column.
type ColumnType string

const (
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeString  ColumnType = "string"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeObject  ColumnType = "object"
)

// ValidColumnTypes contains all valid column type values.
var ValidColumnTypes = []ColumnType{
	ColumnTypeNumber,
	ColumnTypeString,
	ColumnTypeBoolean,
	ColumnTypeDate,
	ColumnTypeObject,
}

// IsValidColumnType checks if the given type is valid.
func IsValidColumnType(t ColumnType) bool {
	return slices.Contains(ValidColumnTypes, t)
}

// ============================================================================
// Profile Status
// ============================================================================

// ProfileStatus represents the outcome of profiling a single data source.
type ProfileStatus string

const (
	ProfileStatusProfiled ProfileStatus = "profiled"
	ProfileStatusFailed   ProfileStatus = "failed"
)

// ValidProfileStatuses contains all valid profile status values.
var ValidProfileStatuses = []ProfileStatus{
	ProfileStatusProfiled,
	ProfileStatusFailed,
}

// IsValidProfileStatus checks if the given status is valid.
func IsValidProfileStatus(s ProfileStatus) bool {
	return slices.Contains(ValidProfileStatuses, s)
}

// ============================================================================
// Column Analysis
// ============================================================================

// ColumnAnalysis holds the per-column profile computed from a bounded row sample.
type ColumnAnalysis struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`

	// Sample statistics
	Unique        bool     `json:"unique"`
	Nullable      bool     `json:"nullable"`
	DistinctCount int      `json:"distinct_count"`
	SampleValues  []string `json:"sample_values,omitempty"`

	// Name heuristics. IsIDColumn is advisory, not authoritative.
	IsIDColumn bool `json:"is_id_column"`

	// Populated after inference
	IsForeignKey     bool     `json:"is_foreign_key"`
	PotentialMatches []string `json:"potential_matches,omitempty"`
}

// DataSourceAnalysis is the profiling result for one data source.
// It is owned by a single analysis call and never persisted by the engine.
type DataSourceAnalysis struct {
	DataSourceID   string           `json:"data_source_id"`
	DataSourceName string           `json:"data_source_name"`
	Columns        []ColumnAnalysis `json:"columns"`
	RecordCount    int64            `json:"record_count"`

	// PotentialJoins lists other data source IDs with at least one suggestion.
	PotentialJoins []string `json:"potential_joins,omitempty"`

	// Status records per-datasource profiling failures without failing the call.
	Status ProfileStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// IsProfiled returns true if the data source was profiled successfully.
func (a *DataSourceAnalysis) IsProfiled() bool {
	return a.Status == ProfileStatusProfiled
}

// Column returns the column analysis with the given name, or nil.
func (a *DataSourceAnalysis) Column(name string) *ColumnAnalysis {
	for i := range a.Columns {
		if a.Columns[i].Name == name {
			return &a.Columns[i]
		}
	}
	return nil
}
