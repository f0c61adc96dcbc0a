package services

import (
	"testing"

	"github.com/weldhq/weld-engine/pkg/models"
)

func edgeBetween(source, target string, confidence float64) *models.RelationshipSuggestion {
	return &models.RelationshipSuggestion{
		ID:                 models.SuggestionID(source, "id", target, "id"),
		SourceDataSourceID: source,
		TargetDataSourceID: target,
		SourceColumn:       "id",
		TargetColumn:       "id",
		Confidence:         confidence,
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind([]string{"a", "b", "c", "d"})

	if uf.connected("a", "b") {
		t.Fatal("fresh sets must be disjoint")
	}
	if !uf.union("a", "b") {
		t.Fatal("first union must merge")
	}
	if uf.union("b", "a") {
		t.Fatal("repeated union must report already connected")
	}
	uf.union("c", "d")
	uf.union("a", "c")
	if !uf.connected("b", "d") {
		t.Fatal("transitive connectivity expected")
	}
}

func TestMaxSpanningBackbonePrefersHighConfidence(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	strong := edgeBetween("a", "b", 0.9)
	alsoStrong := edgeBetween("b", "c", 0.85)
	weak := edgeBetween("a", "c", 0.5) // closes the cycle

	backbone := maxSpanningBackbone(nodes, []*models.RelationshipSuggestion{weak, strong, alsoStrong}, nil)

	if len(backbone) != 2 {
		t.Fatalf("expected 2 backbone edges, got %d", len(backbone))
	}
	if !backbone[strong.Key()] || !backbone[alsoStrong.Key()] {
		t.Fatal("highest-confidence edges must be selected")
	}
	if backbone[weak.Key()] {
		t.Fatal("cycle-closing edge must be rejected")
	}
}

func TestMaxSpanningBackboneDeterministicTieBreak(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	edges := []*models.RelationshipSuggestion{
		edgeBetween("a", "b", 0.8),
		edgeBetween("b", "c", 0.8),
		edgeBetween("a", "c", 0.8),
	}

	first := maxSpanningBackbone(nodes, edges, nil)
	for range 10 {
		again := maxSpanningBackbone(nodes, edges, nil)
		if len(again) != len(first) {
			t.Fatal("tie-break must be deterministic")
		}
		for key := range first {
			if !again[key] {
				t.Fatalf("edge %s missing on repeated run", key)
			}
		}
	}
}

func TestMaxSpanningBackboneForcedEdge(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	strong := edgeBetween("a", "b", 0.9)
	tied := edgeBetween("b", "c", 0.8)
	alternative := edgeBetween("a", "c", 0.8)

	forced := map[string]bool{alternative.Key(): true}
	backbone := maxSpanningBackbone(nodes, []*models.RelationshipSuggestion{strong, tied, alternative}, forced)

	if !backbone[alternative.Key()] {
		t.Fatal("forced edge must enter the backbone")
	}
	if !backbone[strong.Key()] {
		t.Fatal("strongest edge should still be selected")
	}
	if backbone[tied.Key()] {
		t.Fatal("displaced edge must be excluded")
	}
}

func TestMaxSpanningBackboneDisconnectedComponents(t *testing.T) {
	nodes := []string{"a", "b", "c", "d"}
	backbone := maxSpanningBackbone(nodes, []*models.RelationshipSuggestion{
		edgeBetween("a", "b", 0.9),
	}, nil)

	if len(backbone) != 1 {
		t.Fatalf("expected a single edge forest, got %d", len(backbone))
	}
}
