package bestfirst

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated at the end of every run.
type Metrics struct {
	runs     *prometheus.CounterVec
	expanded *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the search collectors on registerer. Pass
// prometheus.DefaultRegisterer to publish them on the default registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bestfirst_runs_total",
			Help: "Total search runs by kind and outcome",
		}, []string{"kind", "outcome"}),
		expanded: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bestfirst_expanded_nodes",
			Help:    "Nodes expanded per search run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
		}, []string{"kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bestfirst_run_duration_seconds",
			Help:    "Search run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"kind"}),
	}
}

func (m *Metrics) observe(kind, outcome string, expanded int, elapsed time.Duration) {
	m.runs.WithLabelValues(kind, outcome).Inc()
	m.expanded.WithLabelValues(kind).Observe(float64(expanded))
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
