package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the solve API. Each instance
// has its own registry so servers in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	solves       *prometheus.CounterVec // by status
	sweeps       prometheus.Counter
	sweepSeconds prometheus.Histogram
	solveSeconds prometheus.Histogram
	inFlight     prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		solves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loopy_solves_total",
			Help: "Solve requests by outcome",
		}, []string{"status"}),
		sweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "loopy_sweeps_total",
			Help: "Four-direction message passing sweeps completed",
		}),
		sweepSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loopy_sweep_duration_seconds",
			Help:    "Wall time of a single sweep",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		solveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loopy_solve_duration_seconds",
			Help:    "Wall time of a solve request, including preparation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loopy_solves_in_flight",
			Help: "Solves currently running",
		}),
	}
}

// ObserveSweep implements solver.Observer.
func (m *Metrics) ObserveSweep(elapsed time.Duration) {
	m.sweeps.Inc()
	m.sweepSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) observeSolve(status string, elapsed time.Duration) {
	m.solves.WithLabelValues(status).Inc()
	m.solveSeconds.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
