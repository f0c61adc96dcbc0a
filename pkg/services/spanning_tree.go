package services

import (
	"sort"

	"github.com/weldhq/weld-engine/pkg/models"
)

// unionFind is a disjoint-set structure over data source IDs with path
// compression and union by rank.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind(nodes []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(nodes)),
		rank:   make(map[string]int, len(nodes)),
	}
	for _, n := range nodes {
		uf.parent[n] = n
	}
	return uf
}

func (uf *unionFind) find(n string) string {
	root := n
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[n] != root {
		uf.parent[n], n = root, uf.parent[n]
	}
	return root
}

// union merges the sets containing a and b. Returns false if they were
// already connected.
func (uf *unionFind) union(a, b string) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
	return true
}

func (uf *unionFind) connected(a, b string) bool {
	return uf.find(a) == uf.find(b)
}

// maxSpanningBackbone runs Kruskal over the given suggestions, preferring
// higher confidence, and returns the set of suggestion keys selected into
// the spanning forest. Ties break on suggestion key so repeated runs pick
// the same backbone.
//
// forced edges, if any, are admitted first regardless of confidence; this
// is how alternative plans substitute a tied edge into the backbone.
func maxSpanningBackbone(nodes []string, suggestions []*models.RelationshipSuggestion, forced map[string]bool) map[string]bool {
	ordered := make([]*models.RelationshipSuggestion, len(suggestions))
	copy(ordered, suggestions)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if forced[a.Key()] != forced[b.Key()] {
			return forced[a.Key()]
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Key() < b.Key()
	})

	uf := newUnionFind(nodes)
	backbone := make(map[string]bool)
	for _, s := range ordered {
		if uf.union(s.SourceDataSourceID, s.TargetDataSourceID) {
			backbone[s.Key()] = true
		}
	}
	return backbone
}
