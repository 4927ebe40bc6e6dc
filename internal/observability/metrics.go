package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Feed label values.
const (
	FeedObservations = "observations"
	FeedForecasts    = "forecasts"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest pipeline.
type Metrics struct {
	FetchesTotal    *prometheus.CounterVec   // labels: feed, outcome={success,fetch_error,parse_error}
	FetchDuration   *prometheus.HistogramVec // labels: feed
	RowsParsed      *prometheus.HistogramVec // labels: feed
	RefreshFailures *prometheus.CounterVec   // labels: feed
	LastRefreshUnix *prometheus.GaugeVec     // labels: feed
	PressureAlerts  prometheus.Gauge
	RowsPublished   prometheus.Counter
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.RowsParsed,
		m.RefreshFailures,
		m.LastRefreshUnix,
		m.PressureAlerts,
		m.RowsPublished,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bom_etl",
			Name:      "fetches_total",
			Help:      "Feed fetch attempts by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bom_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a feed fetch and parse.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed"}),
		RowsParsed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bom_etl",
			Name:      "rows_parsed",
			Help:      "Rows produced per successful fetch.",
			Buckets:   []float64{10, 50, 100, 150, 250, 500, 1000},
		}, []string{"feed"}),
		RefreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bom_etl",
			Name:      "refresh_failures_total",
			Help:      "Refresh cycles that failed and kept the previous snapshot.",
		}, []string{"feed"}),
		LastRefreshUnix: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bom_etl",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}, []string{"feed"}),
		PressureAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bom_etl",
			Name:      "pressure_alerts",
			Help:      "Stations flagged by the pressure anomaly check in the current snapshot.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bom_etl",
			Name:      "rows_published_total",
			Help:      "Derived observation rows published to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bom_etl",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loops are active, 0 when shut down.",
		}),
	}
}
