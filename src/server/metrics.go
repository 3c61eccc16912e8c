package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects server metrics in a private Prometheus registry so
// multiple server instances (tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimitHits   prometheus.Counter
	dispatchTotal   *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		rateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_rate_limit_hits_total",
			Help: "Total number of rate limited requests",
		}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_core_dispatch_total",
			Help: "Core operations dispatched, by module and outcome",
		}, []string{"module", "outcome"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.rateLimitHits,
		m.dispatchTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, latency time.Duration) {
	path = metricPath(path)
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit() {
	m.rateLimitHits.Inc()
}

// RecordDispatch records one core operation dispatch.
func (m *Metrics) RecordDispatch(module, outcome string) {
	m.dispatchTotal.WithLabelValues(module, outcome).Inc()
}

// metricPath collapses ID-bearing paths so label cardinality stays
// bounded.
func metricPath(path string) string {
	const projects = "/api/v1/platform/projects/"
	if len(path) > len(projects) && path[:len(projects)] == projects {
		return projects + ":id"
	}
	return path
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
