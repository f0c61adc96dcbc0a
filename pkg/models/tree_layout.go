package models

import "github.com/google/uuid"

// ============================================================================
// Tree Layout
// ============================================================================

// Position is a 2-D canvas position for a laid-out node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TreeNode is one data source in the visualization-ready graph.
type TreeNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Position    Position `json:"position"`
	RecordCount int64    `json:"record_count"`
}

// TreeEdge is one relationship in the visualization-ready graph.
// Source and Target reference TreeNode IDs. Inactive edges are rendered
// dashed and are excluded from the acyclicity guarantee.
type TreeEdge struct {
	Source           string           `json:"source"`
	Target           string           `json:"target"`
	RelationshipID   uuid.UUID        `json:"relationship_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Confidence       float64          `json:"confidence"`
	IsActive         bool             `json:"is_active"`
}

// TreeLayout is the acyclic leveled layout over the selected data sources.
// Invariants: exactly one node per selected data source; the active edge
// subset is a forest.
type TreeLayout struct {
	Nodes []TreeNode `json:"nodes"`
	Edges []TreeEdge `json:"edges"`
}

// ActiveEdges returns only the edges selected into the spanning backbone.
func (l *TreeLayout) ActiveEdges() []TreeEdge {
	active := make([]TreeEdge, 0, len(l.Edges))
	for _, e := range l.Edges {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return active
}
