package services

import (
	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/models"
)

// Canvas spacing for the generated layout.
const (
	nodeWidth   = 250.0
	levelHeight = 150.0
)

// RelationshipGraphBuilder turns profiled data sources plus suggestions into
// a visualization-ready leveled layout. The active edge subset is always a
// forest: auto-selected suggestions that would close a cycle are rendered
// inactive.
type RelationshipGraphBuilder interface {
	BuildTreeLayout(analyses []*models.DataSourceAnalysis, suggestions []*models.RelationshipSuggestion) *models.TreeLayout
}

type relationshipGraphBuilder struct {
	logger *zap.Logger
}

var _ RelationshipGraphBuilder = (*relationshipGraphBuilder)(nil)

// NewRelationshipGraphBuilder creates a new RelationshipGraphBuilder.
func NewRelationshipGraphBuilder(logger *zap.Logger) RelationshipGraphBuilder {
	return &relationshipGraphBuilder{
		logger: logger.Named("graph-builder"),
	}
}

func (b *relationshipGraphBuilder) BuildTreeLayout(analyses []*models.DataSourceAnalysis, suggestions []*models.RelationshipSuggestion) *models.TreeLayout {
	nodeIDs := make([]string, 0, len(analyses))
	for _, a := range analyses {
		nodeIDs = append(nodeIDs, a.DataSourceID)
	}

	active := activeSuggestions(suggestions)
	backbone := maxSpanningBackbone(nodeIDs, active, nil)

	levels := levelNodes(nodeIDs, active, backbone)

	layout := &models.TreeLayout{
		Nodes: make([]models.TreeNode, 0, len(analyses)),
		Edges: make([]models.TreeEdge, 0, len(suggestions)),
	}

	// Sibling index counts nodes already placed on the same level so
	// separate components continue to the right instead of overlapping.
	siblings := make(map[int]int)
	for _, a := range analyses {
		level := levels[a.DataSourceID]
		layout.Nodes = append(layout.Nodes, models.TreeNode{
			ID:    a.DataSourceID,
			Name:  a.DataSourceName,
			Level: level,
			Position: models.Position{
				X: float64(siblings[level]) * nodeWidth,
				Y: float64(level) * levelHeight,
			},
			RecordCount: a.RecordCount,
		})
		siblings[level]++
	}

	for _, s := range suggestions {
		layout.Edges = append(layout.Edges, models.TreeEdge{
			Source:           s.SourceDataSourceID,
			Target:           s.TargetDataSourceID,
			RelationshipID:   s.ID,
			RelationshipType: s.RelationshipType,
			Confidence:       s.Confidence,
			IsActive:         s.IsActive && backbone[s.Key()],
		})
	}

	b.logger.Debug("built tree layout",
		zap.Int("nodes", len(layout.Nodes)),
		zap.Int("edges", len(layout.Edges)),
		zap.Int("active_edges", len(layout.ActiveEdges())))

	return layout
}

// activeSuggestions filters to the auto-selected suggestion subset.
func activeSuggestions(suggestions []*models.RelationshipSuggestion) []*models.RelationshipSuggestion {
	active := make([]*models.RelationshipSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}

// levelNodes assigns a BFS level to every node. Each connected component is
// traversed from its own root; isolated nodes sit at level 0.
func levelNodes(nodeIDs []string, active []*models.RelationshipSuggestion, backbone map[string]bool) map[string]int {
	adjacency := backboneAdjacency(active, backbone)

	levels := make(map[string]int, len(nodeIDs))
	visited := make(map[string]bool, len(nodeIDs))

	for _, start := range nodeIDs {
		if visited[start] {
			continue
		}
		root := componentRoot(start, nodeIDs, visited, adjacency, active, backbone)

		queue := []string{root}
		visited[root] = true
		levels[root] = 0
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[current] {
				if visited[next] {
					continue
				}
				visited[next] = true
				levels[next] = levels[current] + 1
				queue = append(queue, next)
			}
		}
	}

	return levels
}

// backboneAdjacency builds undirected adjacency lists over backbone edges,
// preserving suggestion order for deterministic traversal.
func backboneAdjacency(active []*models.RelationshipSuggestion, backbone map[string]bool) map[string][]string {
	adjacency := make(map[string][]string)
	for _, s := range active {
		if !backbone[s.Key()] {
			continue
		}
		adjacency[s.SourceDataSourceID] = append(adjacency[s.SourceDataSourceID], s.TargetDataSourceID)
		adjacency[s.TargetDataSourceID] = append(adjacency[s.TargetDataSourceID], s.SourceDataSourceID)
	}
	return adjacency
}

// componentRoot picks the root for the component containing start: the
// member with the highest total confidence over its incident backbone
// edges, ties broken by input order.
func componentRoot(
	start string,
	nodeIDs []string,
	visited map[string]bool,
	adjacency map[string][]string,
	active []*models.RelationshipSuggestion,
	backbone map[string]bool,
) string {
	// Collect the component via a scratch traversal.
	member := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if !member[next] {
				member[next] = true
				queue = append(queue, next)
			}
		}
	}

	incident := make(map[string]float64, len(member))
	for _, s := range active {
		if !backbone[s.Key()] {
			continue
		}
		if member[s.SourceDataSourceID] {
			incident[s.SourceDataSourceID] += s.Confidence
			incident[s.TargetDataSourceID] += s.Confidence
		}
	}

	root := start
	best := incident[start]
	for _, id := range nodeIDs {
		if !member[id] || visited[id] {
			continue
		}
		if incident[id] > best {
			root = id
			best = incident[id]
		}
	}
	return root
}
