package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/logging"
	"github.com/weldhq/weld-engine/pkg/models"
	"github.com/weldhq/weld-engine/pkg/retry"
)

// SchemaProfiler computes per-column profiles from bounded row samples.
type SchemaProfiler interface {
	// ProfileDataSources profiles each data source concurrently. A failure on
	// one data source is recorded on its analysis and does not abort the rest.
	// Results are returned in input order.
	ProfileDataSources(ctx context.Context, dataSourceIDs []string) ([]*models.DataSourceAnalysis, error)
}

type schemaProfiler struct {
	schemas datasource.SchemaAccess
	samples datasource.SampleAccess
	cfg     config.AnalysisConfig
	logger  *zap.Logger
}

var _ SchemaProfiler = (*schemaProfiler)(nil)

// NewSchemaProfiler creates a new SchemaProfiler.
func NewSchemaProfiler(
	schemas datasource.SchemaAccess,
	samples datasource.SampleAccess,
	cfg config.AnalysisConfig,
	logger *zap.Logger,
) SchemaProfiler {
	return &schemaProfiler{
		schemas: schemas,
		samples: samples,
		cfg:     cfg,
		logger:  logger.Named("schema-profiler"),
	}
}

func (p *schemaProfiler) ProfileDataSources(ctx context.Context, dataSourceIDs []string) ([]*models.DataSourceAnalysis, error) {
	results := make([]*models.DataSourceAnalysis, len(dataSourceIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ProfileConcurrency)

	for i, id := range dataSourceIDs {
		g.Go(func() error {
			analysis, err := p.profileOne(gctx, id)
			if err != nil {
				p.logger.Warn("profiling failed",
					zap.String("data_source_id", id),
					zap.Error(err))
				analysis = &models.DataSourceAnalysis{
					DataSourceID: id,
					Status:       models.ProfileStatusFailed,
					Error:        logging.SanitizeError(err),
				}
			}
			results[i] = analysis
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// profileOne fetches schema and sample for a single data source under its
// own timeout, then profiles every column.
func (p *schemaProfiler) profileOne(ctx context.Context, dataSourceID string) (*models.DataSourceAnalysis, error) {
	timeout := time.Duration(p.cfg.ProfileTimeoutSeconds) * time.Second
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Transient connector failures get a short backoff before the data
	// source is recorded as failed.
	schema, err := retry.DoWithResult(fetchCtx, nil, func() (*datasource.Schema, error) {
		return p.schemas.GetSchema(fetchCtx, dataSourceID)
	})
	if err != nil {
		return nil, fmt.Errorf("get schema: %w", err)
	}

	sample, err := retry.DoWithResult(fetchCtx, nil, func() ([]datasource.Row, error) {
		return p.samples.FetchSample(fetchCtx, dataSourceID, p.cfg.SampleLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}

	analysis := &models.DataSourceAnalysis{
		DataSourceID:   dataSourceID,
		DataSourceName: schema.Name,
		Columns:        p.profileColumns(schema, sample),
		RecordCount:    int64(len(sample)),
		Status:         models.ProfileStatusProfiled,
	}

	p.logger.Debug("profiled data source",
		zap.String("data_source_id", dataSourceID),
		zap.Int("columns", len(analysis.Columns)),
		zap.Int64("sampled_rows", analysis.RecordCount))

	return analysis, nil
}

// profileColumns computes the per-column statistics in schema column order.
func (p *schemaProfiler) profileColumns(schema *datasource.Schema, sample []datasource.Row) []models.ColumnAnalysis {
	columns := make([]models.ColumnAnalysis, 0, len(schema.Columns))

	for _, sc := range schema.Columns {
		col := models.ColumnAnalysis{
			Name:       sc.Name,
			IsIDColumn: isIDColumnName(sc.Name),
		}

		distinct := make(map[string]bool)
		typeCounts := make(map[models.ColumnType]int)

		for _, row := range sample {
			value, present := row[sc.Name]
			if !present || value == nil {
				col.Nullable = true
				continue
			}

			rendered := renderValue(value)
			if !distinct[rendered] {
				distinct[rendered] = true
				if len(col.SampleValues) < p.cfg.SampleValueCount {
					col.SampleValues = append(col.SampleValues, rendered)
				}
			}
			typeCounts[inferValueType(value)]++
		}

		col.DistinctCount = len(distinct)
		col.Type = dominantType(typeCounts)
		col.Unique = col.DistinctCount == len(sample) && len(sample) > 1

		columns = append(columns, col)
	}

	return columns
}

// isIDColumnName applies the identifier naming heuristics. Advisory only.
func isIDColumnName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" ||
		strings.HasSuffix(lower, "_id") ||
		strings.HasSuffix(name, "Id") ||
		strings.Contains(lower, "key")
}

// inferValueType classifies a single sampled value.
func inferValueType(v any) models.ColumnType {
	switch t := v.(type) {
	case bool:
		return models.ColumnTypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return models.ColumnTypeNumber
	case time.Time:
		return models.ColumnTypeDate
	case map[string]any, []any:
		return models.ColumnTypeObject
	case string:
		return inferStringType(t)
	default:
		return models.ColumnTypeString
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// inferStringType detects values that arrive as text but carry a more
// specific type, common with CSV-shaped fixtures.
func inferStringType(s string) models.ColumnType {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.ColumnTypeString
	}

	switch strings.ToLower(trimmed) {
	case "true", "false":
		return models.ColumnTypeBoolean
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return models.ColumnTypeNumber
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return models.ColumnTypeDate
		}
	}
	return models.ColumnTypeString
}

// dominantType picks the most frequent value type; string on ties or when
// no non-null values were seen.
func dominantType(counts map[models.ColumnType]int) models.ColumnType {
	best := models.ColumnTypeString
	bestCount := 0
	tied := false
	for _, t := range models.ValidColumnTypes {
		c := counts[t]
		if c > bestCount {
			best = t
			bestCount = c
			tied = false
		} else if c == bestCount && c > 0 {
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return models.ColumnTypeString
	}
	return best
}

// renderValue produces the stable textual form used for distinct counting,
// sample display, and value-overlap comparison.
func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
