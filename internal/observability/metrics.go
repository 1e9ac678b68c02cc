package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard pipeline.
type Metrics struct {
	PipelineRuns        *prometheus.CounterVec // labels: outcome={success,fetch_error,schema_error,date_error,empty,error}
	PipelineRunDuration prometheus.Histogram
	SnapshotStates      prometheus.Gauge

	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,network,http_status,parse}
	FetchDuration prometheus.Histogram

	// Snapshot publishing metrics.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.PipelineRunDuration,
		m.SnapshotStates,
		m.FetchRequests,
		m.FetchDuration,
		m.RecordsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_dashboard",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-derive-rank run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "snapshot_states",
			Help:      "Number of states in the last successful snapshot.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "fetch_requests_total",
			Help:      "Brasil.io API requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "Brasil.io API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "records_published_total",
			Help:      "State records written to the snapshot topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "publish_errors_total",
			Help:      "Failed snapshot publish attempts.",
		}),
	}
}
