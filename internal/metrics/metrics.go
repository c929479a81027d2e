// Package metrics exposes Prometheus collectors for the parse pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cardparse"

// Metrics groups the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	parses      *prometheus.CounterVec
	strategies  *prometheus.CounterVec
	issuers     *prometheus.CounterVec
	enhancement *prometheus.CounterVec
	stages      *prometheus.HistogramVec
	confidence  prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Completed parses by final status.",
		}, []string{"status"}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_total",
			Help:      "Extraction strategy selected per parse.",
		}, []string{"strategy"}),
		issuers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issuer_detections_total",
			Help:      "Detected issuers.",
		}, []string{"issuer"}),
		enhancement: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancements_total",
			Help:      "Enhancement attempts by outcome.",
		}, []string{"outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Final confidence score per parse.",
			Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.8, 1},
		}),
	}
	m.registry.MustRegister(
		m.parses, m.strategies, m.issuers, m.enhancement, m.stages, m.confidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveParse(status string, confidence float64) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(status).Inc()
	m.confidence.Observe(confidence)
}

func (m *Metrics) ObserveStrategy(strategy string) {
	if m == nil {
		return
	}
	m.strategies.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveIssuer(issuer string) {
	if m == nil {
		return
	}
	m.issuers.WithLabelValues(issuer).Inc()
}

// ObserveEnhancement counts an enhancement attempt; outcome is "ok" or "failed".
func (m *Metrics) ObserveEnhancement(outcome string) {
	if m == nil {
		return
	}
	m.enhancement.WithLabelValues(outcome).Inc()
}

// ObserveStage records the time since start under stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
