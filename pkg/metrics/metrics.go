package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one process. Each instance has
// its own registry so tests and the textfile export see only what this
// process recorded.
type Metrics struct {
	Registry *prometheus.Registry

	JobsTotal    *prometheus.CounterVec
	JobDuration  *prometheus.HistogramVec
	JobsInFlight prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActionsTotal        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debugpanel_jobs_total",
				Help: "Total number of DebugPanel jobs run, by operation and outcome kind.",
			},
			[]string{"operation", "outcome"}, // outcome: success, authentication, http, transport, skipped, internal
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debugpanel_job_duration_seconds",
				Help:    "Duration of DebugPanel jobs.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		JobsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debugpanel_jobs_in_flight",
				Help: "Current number of DebugPanel jobs being run.",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debugpanel_actions_received_total",
				Help: "Total number of DebugPanel actions accepted by the mock node.",
			},
			[]string{"action"},
		),
	}
}

// ObserveJob records one finished job.
func (m *Metrics) ObserveJob(operation, outcome string, d time.Duration) {
	m.JobsTotal.WithLabelValues(operation, outcome).Inc()
	m.JobDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
