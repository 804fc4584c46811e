package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/couchcryptid/wildlife-park-etl/internal/observability"
)

// Extractor reads the raw input table from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawTable, error)
}

// Pipeline orchestrates the extract-clean-aggregate-correlate run and holds
// the latest report for readers.
type Pipeline struct {
	extractor Extractor
	variant   domain.Variant
	logger    *slog.Logger
	metrics   *observability.Metrics
	report    atomic.Pointer[domain.Report]
}

// New creates a Pipeline for the given variant.
func New(e Extractor, variant domain.Variant, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		variant:   variant,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a report is available, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.report.Load() == nil {
		return errors.New("pipeline has not produced a report yet")
	}
	return nil
}

// Report returns the latest report, or nil before the first successful run.
func (p *Pipeline) Report() *domain.Report {
	return p.report.Load()
}

// Variant returns the variant the pipeline runs.
func (p *Pipeline) Variant() domain.Variant {
	return p.variant
}

// Run executes one full pass over the input. On success the report is
// published for Report and CheckReadiness; on failure the previous report,
// if any, stays in place.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	p.logger.Info("pipeline started", "variant", p.variant.Name)

	raw, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	series, err := p.clean(raw)
	if err != nil {
		return nil, err
	}

	// Bad view or correlation references fail before any aggregation work.
	if err := p.variant.Validate(series.Fields()); err != nil {
		return nil, err
	}

	views, err := p.aggregate(ctx, series)
	if err != nil {
		return nil, err
	}

	matrices, err := p.correlate(ctx, views)
	if err != nil {
		return nil, err
	}

	report := domain.NewReport(p.variant.Name, domain.Summarize(series), views, matrices)
	p.report.Store(report)
	p.metrics.PipelineReady.Set(1)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("pipeline finished",
		"views", len(views),
		"correlations", len(matrices),
		"duration", time.Since(start),
	)
	return report, nil
}

func (p *Pipeline) extract(ctx context.Context) (domain.RawTable, error) {
	defer p.observe("extract", time.Now())

	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("extract: %w", err)
	}
	p.logger.Info("input extracted", "columns", len(raw.Header), "rows", len(raw.Rows))
	return raw, nil
}

func (p *Pipeline) clean(raw domain.RawTable) (*domain.Series, error) {
	defer p.observe("clean", time.Now())

	series, err := domain.Clean(raw, p.variant.Clean)
	if err != nil {
		return nil, err
	}

	p.metrics.RowsLoaded.Add(float64(series.Len()))
	for _, f := range series.Fields() {
		n := series.MissingCount(f)
		if n == 0 {
			continue
		}
		p.metrics.MissingValues.WithLabelValues(string(f)).Add(float64(n))
		p.logger.Debug("missing values", "field", f, "count", n)
	}

	p.logger.Info("input cleaned",
		"rows", series.Len(),
		"fields", len(series.Fields()),
		"start", series.Start(),
		"end", series.End(),
	)
	return series, nil
}

func (p *Pipeline) aggregate(ctx context.Context, series *domain.Series) ([]*domain.DailyTable, error) {
	defer p.observe("aggregate", time.Now())

	span := series.DaySpan()
	views := make([]*domain.DailyTable, 0, len(p.variant.Views))
	for _, spec := range p.variant.Views {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := domain.Aggregate(series, spec)
		if err != nil {
			return nil, err
		}
		dropped := span - table.Len()
		p.metrics.ViewDays.WithLabelValues(spec.Name).Set(float64(table.Len()))
		p.metrics.RowsDropped.WithLabelValues(spec.Name).Set(float64(dropped))
		p.logger.Info("view aggregated", "view", spec.Name, "days", table.Len(), "dropped", dropped)
		views = append(views, table)
	}
	return views, nil
}

func (p *Pipeline) correlate(ctx context.Context, views []*domain.DailyTable) ([]*domain.CorrelationMatrix, error) {
	defer p.observe("correlate", time.Now())

	matrices := make([]*domain.CorrelationMatrix, 0, len(p.variant.Correlations))
	for _, c := range p.variant.Correlations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table := findView(views, c.View)
		if table == nil {
			return nil, &domain.ConfigError{Op: "correlation " + c.View, Msg: "unknown view"}
		}
		m, err := domain.Correlate(table, c.Fields)
		if err != nil {
			return nil, err
		}
		p.logger.Info("view correlated", "view", c.View, "fields", len(c.Fields))
		matrices = append(matrices, m)
	}
	return matrices, nil
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func findView(views []*domain.DailyTable, name string) *domain.DailyTable {
	for _, v := range views {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

