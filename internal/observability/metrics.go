package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "park_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the analysis run
// and the dashboard that serves its results.
type Metrics struct {
	RowsLoaded    prometheus.Counter
	MissingValues *prometheus.CounterVec // labels: field
	ViewDays      *prometheus.GaugeVec   // labels: view
	RowsDropped   *prometheus.GaugeVec   // labels: view
	PipelineReady prometheus.Gauge

	// Stage timing.
	StageDuration *prometheus.HistogramVec // labels: stage={extract,clean,aggregate,correlate}
	RunDuration   prometheus.Histogram

	// Chart rendering metrics.
	ChartRenders *prometheus.CounterVec // labels: outcome={success,error}
	ChartCache   *prometheus.CounterVec // labels: result={hit,miss}
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total input rows accepted by the cleaner.",
		}),
		MissingValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_values_total",
			Help:      "Cells that became missing during cleaning, by field.",
		}, []string{"field"}),
		ViewDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_days",
			Help:      "Day rows in each aggregated view.",
		}, []string{"view"}),
		RowsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_rows_dropped",
			Help:      "Day rows removed by each view's drop policy.",
		}, []string{"view"}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a report is available, 0 otherwise.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   durationBuckets,
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-clean-aggregate-correlate run.",
			Buckets:   durationBuckets,
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart renders by outcome.",
		}, []string{"outcome"}),
		ChartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_cache_total",
			Help:      "Rendered chart cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsLoaded,
		m.MissingValues,
		m.ViewDays,
		m.RowsDropped,
		m.PipelineReady,
		m.StageDuration,
		m.RunDuration,
		m.ChartRenders,
		m.ChartCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
