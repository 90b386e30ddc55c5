// Package metrics wraps the Prometheus collectors the scheduler exports,
// following the same registry-per-process, namespaced-collector pattern
// used elsewhere in this codebase.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus collectors for the scheduler.
type Metrics struct {
	registry *prometheus.Registry

	invocationsTotal  *prometheus.CounterVec
	coldStartsTotal   *prometheus.CounterVec
	warmStartsTotal   *prometheus.CounterVec
	queuedTotal       *prometheus.CounterVec
	limitReachedTotal *prometheus.CounterVec

	activeContainers *prometheus.GaugeVec
	queueDepth       *prometheus.GaugeVec
}

var current *Metrics

// Init builds and registers the scheduler's collectors under namespace.
func Init(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "invocations_total", Help: "Total invocations handled.",
		}, []string{"function"}),
		coldStartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cold_starts_total", Help: "Total cold starts.",
		}, []string{"function"}),
		warmStartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "warm_starts_total", Help: "Total warm-container reuses.",
		}, []string{"function"}),
		queuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "queued_total", Help: "Total requests enqueued at the concurrency limit.",
		}, []string{"function"}),
		limitReachedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "limit_reached_total", Help: "Total times a function's pool was at its concurrency limit.",
		}, []string{"function"}),
		activeContainers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_containers", Help: "Containers currently held per function.",
		}, []string{"function"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "queue_depth", Help: "Requests currently waiting per function.",
		}, []string{"function"}),
	}
	registry.MustRegister(
		m.invocationsTotal, m.coldStartsTotal, m.warmStartsTotal,
		m.queuedTotal, m.limitReachedTotal, m.activeContainers, m.queueDepth,
	)
	current = m
	return m
}

// Handler returns the Prometheus scrape handler for this Metrics instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordColdStart increments the invocation and cold-start counters for function.
func (m *Metrics) RecordColdStart(function string) {
	m.invocationsTotal.WithLabelValues(function).Inc()
	m.coldStartsTotal.WithLabelValues(function).Inc()
}

// RecordWarmStart increments the invocation and warm-start counters for function.
func (m *Metrics) RecordWarmStart(function string) {
	m.invocationsTotal.WithLabelValues(function).Inc()
	m.warmStartsTotal.WithLabelValues(function).Inc()
}

// RecordQueued increments the queued and limit-reached counters for function.
func (m *Metrics) RecordQueued(function string) {
	m.queuedTotal.WithLabelValues(function).Inc()
	m.limitReachedTotal.WithLabelValues(function).Inc()
}

// SetOccupancy reports a pool's current container count and queue depth.
func (m *Metrics) SetOccupancy(function string, containers, queued int) {
	m.activeContainers.WithLabelValues(function).Set(float64(containers))
	m.queueDepth.WithLabelValues(function).Set(float64(queued))
}

// Current returns the globally initialized Metrics, or nil if Init was never called.
func Current() *Metrics {
	return current
}
