package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ApplicationsCreated prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	DocumentsSubmitted  prometheus.Counter
	DocumentsReplaced   prometheus.Counter
	ReviewDecisions     *prometheus.CounterVec
	ComplianceSignals   *prometheus.CounterVec
	FeeAssessments      prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_applications_created_total",
			Help: "Total number of permit applications created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_status_transitions_total",
			Help: "Application status transitions by action and outcome",
		}, []string{"action", "outcome"}),
		DocumentsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_documents_submitted_total",
			Help: "Total number of initial document submissions",
		}),
		DocumentsReplaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_documents_replaced_total",
			Help: "Total number of document replacements",
		}),
		ReviewDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_review_decisions_total",
			Help: "Document review decisions by outcome",
		}, []string{"decision"}),
		ComplianceSignals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_compliance_signals_total",
			Help: "Compliance signal evaluations by color",
		}, []string{"signal"}),
		FeeAssessments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_fee_assessments_total",
			Help: "Total number of fee assessments computed",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permitdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// RecordTransition counts one status machine transition attempt.
func (m *Metrics) RecordTransition(action, outcome string) {
	m.StatusTransitions.WithLabelValues(action, outcome).Inc()
}

// RecordReviewDecision counts one document review decision.
func (m *Metrics) RecordReviewDecision(decision string) {
	m.ReviewDecisions.WithLabelValues(decision).Inc()
}

// RecordComplianceSignal counts one compliance evaluation by color.
func (m *Metrics) RecordComplianceSignal(signal string) {
	m.ComplianceSignals.WithLabelValues(signal).Inc()
}
