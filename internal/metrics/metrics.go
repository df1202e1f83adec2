// Package metrics exports Prometheus metrics for the discovery pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline Prometheus metrics
type Metrics struct {
	// Run metrics
	RunsStarted   prometheus.Counter
	RunsCompleted *prometheus.CounterVec
	RunDuration   prometheus.Histogram

	// Discovery metrics
	ProductsPersisted *prometheus.CounterVec
	IdeasProcessed    prometheus.Counter

	// Collaborator metrics
	CollectorCalls    *prometheus.CounterVec
	CollectorDegraded *prometheus.CounterVec

	registry *prometheus.Registry
}

// New initializes the pipeline metrics on a fresh registry.
func New() *Metrics {
	return NewWith(prometheus.NewRegistry())
}

// NewWith registers the pipeline metrics on reg. The registry is kept so
// Handler serves these metrics rather than the global default set.
func NewWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "adscout_runs_started_total",
			Help: "Total discovery runs started",
		}),
		RunsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adscout_runs_completed_total",
			Help: "Total discovery runs completed, by outcome (products, empty)",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adscout_run_duration_seconds",
			Help:    "End-to-end duration of a discovery run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ProductsPersisted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adscout_products_persisted_total",
			Help: "Total products written, by result (created, updated)",
		}, []string{"result"}),
		IdeasProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "adscout_ideas_processed_total",
			Help: "Total campaign ideas processed across runs",
		}),
		CollectorCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adscout_collector_calls_total",
			Help: "Total collaborator calls, by collector (browser, search, planner)",
		}, []string{"collector"}),
		CollectorDegraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adscout_collector_degraded_total",
			Help: "Total collaborator calls that fell back to a degraded result",
		}, []string{"collector"}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRunCompleted records the outcome and duration of a finished run.
func (m *Metrics) RecordRunCompleted(productCount int, duration time.Duration) {
	outcome := "products"
	if productCount == 0 {
		outcome = "empty"
	}
	m.RunsCompleted.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// RecordPersist records a product write.
func (m *Metrics) RecordPersist(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	m.ProductsPersisted.WithLabelValues(result).Inc()
}

// RecordCollectorCall records a collaborator call and whether it degraded.
func (m *Metrics) RecordCollectorCall(collector string, degraded bool) {
	m.CollectorCalls.WithLabelValues(collector).Inc()
	if degraded {
		m.CollectorDegraded.WithLabelValues(collector).Inc()
	}
}
