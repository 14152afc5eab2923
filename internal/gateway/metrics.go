package gateway

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks gateway-level request counters, backed by a Prometheus
// registry for scraping and by atomic counters for the cheap in-process
// /status snapshot. Provider-labeled counters let operators break down
// traffic per upstream without touching the JSON surface.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	tokensGenerated *prometheus.CounterVec

	completions  atomic.Int64
	errors       atomic.Int64
	totalTokens  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// NewMetrics constructs a Metrics instance registered against a fresh
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freeginai_generate_requests_total",
		Help: "Total number of /api/v1/generate requests, by provider and outcome.",
	}, []string{"provider", "outcome"})

	m.requestErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freeginai_generate_errors_total",
		Help: "Total number of failed generation attempts, by provider.",
	}, []string{"provider"})

	m.requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freeginai_generate_latency_seconds",
		Help:    "Latency of successful generation attempts, by provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	m.tokensGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freeginai_generate_tokens_total",
		Help: "Approximate tokens generated, by provider.",
	}, []string{"provider"})

	m.registry.MustRegister(m.requestsTotal, m.requestErrors, m.requestLatency, m.tokensGenerated)
	return m
}

// Registry exposes the underlying Prometheus registry for a /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCompletion records a successful generation from providerName.
func (m *Metrics) RecordCompletion(providerName string, tokens int, latency time.Duration) {
	m.completions.Add(1)
	m.totalTokens.Add(int64(tokens))
	m.totalLatency.Add(int64(latency))

	m.requestsTotal.WithLabelValues(providerName, "success").Inc()
	m.requestLatency.WithLabelValues(providerName).Observe(latency.Seconds())
	if tokens > 0 {
		m.tokensGenerated.WithLabelValues(providerName).Add(float64(tokens))
	}
}

// RecordError records a failed generation attempt from providerName.
func (m *Metrics) RecordError(providerName string) {
	m.errors.Add(1)
	m.requestsTotal.WithLabelValues(providerName, "error").Inc()
	m.requestErrors.WithLabelValues(providerName).Inc()
}

// Snapshot returns a consistent point-in-time view of the counters for the
// /status JSON endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	completions := m.completions.Load()
	snap := MetricsSnapshot{
		Completions: completions,
		Errors:      m.errors.Load(),
		TotalTokens: m.totalTokens.Load(),
	}
	if completions > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / completions)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Completions int64         `json:"completions"`
	Errors      int64         `json:"errors"`
	TotalTokens int64         `json:"total_tokens"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
