package services

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/models"
)

// RelationshipInferencer proposes cross-dataset join keys from column
// profiles. Pure and deterministic: identical input always yields the
// identical suggestion list.
type RelationshipInferencer interface {
	InferRelationships(analyses []*models.DataSourceAnalysis) []*models.RelationshipSuggestion
}

type relationshipInferencer struct {
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

var _ RelationshipInferencer = (*relationshipInferencer)(nil)

// NewRelationshipInferencer creates a new RelationshipInferencer.
func NewRelationshipInferencer(cfg config.AnalysisConfig, logger *zap.Logger) RelationshipInferencer {
	return &relationshipInferencer{
		cfg:    cfg,
		logger: logger.Named("relationship-inferencer"),
	}
}

func (s *relationshipInferencer) InferRelationships(analyses []*models.DataSourceAnalysis) []*models.RelationshipSuggestion {
	suggestions := []*models.RelationshipSuggestion{}

	// Ordered dataset pairs in input order keep the output deterministic.
	for i, source := range analyses {
		if !source.IsProfiled() {
			continue
		}
		for j, target := range analyses {
			if i == j || !target.IsProfiled() {
				continue
			}
			suggestions = append(suggestions, s.inferPair(source, target)...)
		}
	}

	s.logger.Debug("inferred relationships",
		zap.Int("data_sources", len(analyses)),
		zap.Int("suggestions", len(suggestions)))

	return suggestions
}

// inferPair evaluates every ordered column pair between two profiled data
// sources and converts rule hits into suggestions.
func (s *relationshipInferencer) inferPair(source, target *models.DataSourceAnalysis) []*models.RelationshipSuggestion {
	var out []*models.RelationshipSuggestion

	for si := range source.Columns {
		sc := &source.Columns[si]
		for ti := range target.Columns {
			tc := &target.Columns[ti]

			match := s.matchColumns(sc, tc)
			if match == nil {
				continue
			}

			suggestion := s.buildSuggestion(source, target, sc, tc, match)
			out = append(out, suggestion)
		}
	}

	return out
}

// matchColumns applies the match rules in priority order. The first rule
// that fires decides the base confidence and match type.
func (s *relationshipInferencer) matchColumns(sc, tc *models.ColumnAnalysis) *models.ColumnMatch {
	sourceName := strings.ToLower(sc.Name)
	targetName := strings.ToLower(tc.Name)

	match := &models.ColumnMatch{
		SourceColumn:  sc.Name,
		TargetColumn:  tc.Name,
		DataType:      sc.Type,
		SourceSamples: sc.SampleValues,
		TargetSamples: tc.SampleValues,
	}

	switch {
	case sourceName == targetName:
		match.MatchType = models.MatchTypeExact
		match.Confidence = 0.8
	case strings.Contains(sourceName, "id") && strings.Contains(targetName, "id"):
		match.MatchType = models.MatchTypeSimilar
		match.Confidence = 0.8
	case strings.Contains(sourceName, "key") && strings.Contains(targetName, "key"):
		match.MatchType = models.MatchTypeSimilar
		match.Confidence = 0.8
	case typesCompatible(sc.Type, tc.Type) && nameSimilarity(sourceName, targetName) > s.cfg.NameSimilarityThreshold:
		match.MatchType = models.MatchTypeCompatible
		match.Confidence = 0.5
	default:
		return nil
	}

	return match
}

// buildSuggestion applies confidence adjustments, derives cardinality, and
// produces the reasoning text.
func (s *relationshipInferencer) buildSuggestion(
	source, target *models.DataSourceAnalysis,
	sc, tc *models.ColumnAnalysis,
	match *models.ColumnMatch,
) *models.RelationshipSuggestion {
	confidence := match.Confidence
	reasons := []string{matchReason(sc.Name, tc.Name, match.MatchType)}

	// A non-unique column pointing at a unique or identifier column is the
	// classic foreign key direction.
	if (tc.Unique || tc.IsIDColumn) && !sc.Unique {
		confidence += 0.1
		reasons = append(reasons, "target side looks like a primary identifier")
	}

	if len(sc.SampleValues) > 0 && len(tc.SampleValues) > 0 && !samplesOverlap(sc.SampleValues, tc.SampleValues) {
		confidence -= 0.2
		reasons = append(reasons, "sampled values do not overlap")
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &models.RelationshipSuggestion{
		ID:                 models.SuggestionID(source.DataSourceID, sc.Name, target.DataSourceID, tc.Name),
		SourceDataSourceID: source.DataSourceID,
		TargetDataSourceID: target.DataSourceID,
		SourceColumn:       sc.Name,
		TargetColumn:       tc.Name,
		SourceTableName:    source.DataSourceName,
		TargetTableName:    target.DataSourceName,
		RelationshipType:   cardinality(sc.Unique, tc.Unique),
		Confidence:         confidence,
		Reasoning:          strings.Join(reasons, "; "),
		IsActive:           confidence >= s.cfg.AutoSelectThreshold,
	}
}

// cardinality derives the relationship type, read source to target, from
// which sides are unique within their samples.
func cardinality(sourceUnique, targetUnique bool) models.RelationshipType {
	switch {
	case sourceUnique && targetUnique:
		return models.RelationshipOneToOne
	case sourceUnique:
		return models.RelationshipOneToMany
	case targetUnique:
		return models.RelationshipManyToOne
	default:
		return models.RelationshipManyToMany
	}
}

func matchReason(sourceColumn, targetColumn string, matchType models.MatchType) string {
	switch matchType {
	case models.MatchTypeExact:
		return fmt.Sprintf("columns %q and %q have identical names", sourceColumn, targetColumn)
	case models.MatchTypeSimilar:
		return fmt.Sprintf("columns %q and %q share identifier naming", sourceColumn, targetColumn)
	default:
		return fmt.Sprintf("columns %q and %q have compatible types and similar names", sourceColumn, targetColumn)
	}
}

// typesCompatible reports whether two inferred column types can plausibly
// hold the same key domain.
func typesCompatible(a, b models.ColumnType) bool {
	if a == b {
		return true
	}
	// Numeric keys frequently surface as text in file-backed sources.
	return (a == models.ColumnTypeNumber && b == models.ColumnTypeString) ||
		(a == models.ColumnTypeString && b == models.ColumnTypeNumber)
}

// nameSimilarity is a normalized edit-distance similarity over singularized
// lowercase names, so "customer_ids" and "customer_id" compare close and
// "orders" relates to "order".
func nameSimilarity(a, b string) float64 {
	na := normalizeColumnName(a)
	nb := normalizeColumnName(b)
	if na == nb {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
}

func normalizeColumnName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	return inflection.Singular(name)
}

// samplesOverlap reports whether the two rendered sample sets share any value.
func samplesOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}
