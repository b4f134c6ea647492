package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the gate service.
type Metrics struct {
	// Decisions by outcome
	decisions *prometheus.CounterVec

	// Matcher fallbacks (semantic requested, lexical used)
	matcherFallbacks prometheus.Counter

	// Acknowledgements of level-2 gates
	acknowledgements prometheus.Counter

	// Evaluation latency
	evaluateDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with Prometheus collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatewright_gate_decisions_total",
				Help: "Total number of gate decisions by decision and reason",
			},
			[]string{"decision", "reason"},
		),

		matcherFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gatewright_gate_matcher_fallbacks_total",
				Help: "Total number of semantic matcher fallbacks to lexical",
			},
		),

		acknowledgements: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gatewright_gate_acknowledgements_total",
				Help: "Total number of acknowledged level-2 gates",
			},
		),

		evaluateDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gatewright_gate_evaluate_duration_seconds",
				Help:    "Duration of gate evaluations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~1.6s
			},
		),
	}
}

// RecordDecision records one gate decision.
func (m *Metrics) RecordDecision(decision, reason string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, reason).Inc()
}

// RecordFallback records one semantic-to-lexical matcher fallback.
func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.matcherFallbacks.Inc()
}

// RecordAcknowledgement records one acknowledged level-2 gate.
func (m *Metrics) RecordAcknowledgement() {
	if m == nil {
		return
	}
	m.acknowledgements.Inc()
}

// RecordEvaluateDuration records the duration of one evaluation in seconds.
func (m *Metrics) RecordEvaluateDuration(seconds float64) {
	if m == nil {
		return
	}
	m.evaluateDuration.Observe(seconds)
}
