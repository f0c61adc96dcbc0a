package models

import (
	"testing"
)

func TestIsValidRelationshipType(t *testing.T) {
	tests := []struct {
		name     string
		relType  RelationshipType
		expected bool
	}{
		{"valid one_to_one", RelationshipOneToOne, true},
		{"valid one_to_many", RelationshipOneToMany, true},
		{"valid many_to_one", RelationshipManyToOne, true},
		{"valid many_to_many", RelationshipManyToMany, true},
		{"invalid type", RelationshipType("one_to_some"), false},
		{"empty type", RelationshipType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRelationshipType(tt.relType)
			if result != tt.expected {
				t.Errorf("IsValidRelationshipType(%q) = %v, want %v", tt.relType, result, tt.expected)
			}
		})
	}
}

func TestRelationshipTypeReverse(t *testing.T) {
	tests := []struct {
		name     string
		input    RelationshipType
		expected RelationshipType
	}{
		{"one_to_many becomes many_to_one", RelationshipOneToMany, RelationshipManyToOne},
		{"many_to_one becomes one_to_many", RelationshipManyToOne, RelationshipOneToMany},
		{"one_to_one stays one_to_one", RelationshipOneToOne, RelationshipOneToOne},
		{"many_to_many stays many_to_many", RelationshipManyToMany, RelationshipManyToMany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.input.Reverse()
			if result != tt.expected {
				t.Errorf("Reverse(%s) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsValidMatchType(t *testing.T) {
	tests := []struct {
		name      string
		matchType MatchType
		expected  bool
	}{
		{"valid exact", MatchTypeExact, true},
		{"valid similar", MatchTypeSimilar, true},
		{"valid compatible", MatchTypeCompatible, true},
		{"invalid match type", MatchType("fuzzy"), false},
		{"empty match type", MatchType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidMatchType(tt.matchType)
			if result != tt.expected {
				t.Errorf("IsValidMatchType(%q) = %v, want %v", tt.matchType, result, tt.expected)
			}
		})
	}
}

func TestSuggestionIDIsDeterministic(t *testing.T) {
	a := SuggestionID("orders", "customer_id", "customers", "id")
	b := SuggestionID("orders", "customer_id", "customers", "id")
	if a != b {
		t.Errorf("SuggestionID not deterministic: %s != %s", a, b)
	}

	reversed := SuggestionID("customers", "id", "orders", "customer_id")
	if a == reversed {
		t.Error("SuggestionID should differ for reversed column pairs")
	}
}

func TestSuggestionKey(t *testing.T) {
	s := &RelationshipSuggestion{
		SourceDataSourceID: "orders",
		SourceColumn:       "customer_id",
		TargetDataSourceID: "customers",
		TargetColumn:       "id",
	}
	expected := "orders.customer_id->customers.id"
	if s.Key() != expected {
		t.Errorf("Key() = %q, want %q", s.Key(), expected)
	}
}
