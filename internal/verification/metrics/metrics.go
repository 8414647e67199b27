package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Provider call latencies by evidence kind
	EvidenceLatency *prometheus.HistogramVec

	// Provider failures by evidence kind and error category
	ProviderErrors *prometheus.CounterVec

	// Decision outcomes by status
	DecisionOutcome *prometheus.CounterVec

	// Review signals raised, by signal code
	Signals *prometheus.CounterVec

	// Wall time of a full attempt including evidence gathering
	VerifyLatency prometheus.Histogram

	// Manual review resolutions by outcome
	Resolutions *prometheus.CounterVec
}

// New registers the verification metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EvidenceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surebet_kyc_evidence_duration_seconds",
			Help:    "Duration of evidence provider calls by kind",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"kind"}), // kind: "id_extraction", "face_match", "age_estimate"

		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_kyc_provider_errors_total",
			Help: "Evidence provider failures by kind and category",
		}, []string{"kind", "category"}),

		DecisionOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_kyc_decisions_total",
			Help: "Verification decisions by status",
		}, []string{"status"}),

		Signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_kyc_signals_total",
			Help: "Policy engine signals raised by code",
		}, []string{"signal"}),

		VerifyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "surebet_kyc_verify_duration_seconds",
			Help:    "Duration of a full verification attempt",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		}),

		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_kyc_review_resolutions_total",
			Help: "Manual review resolutions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveEvidenceLatency(kind string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementProviderError(kind, category string) {
	if m != nil {
		m.ProviderErrors.WithLabelValues(kind, category).Inc()
	}
}

// IncrementOutcome records a decision and each signal behind it.
func (m *Metrics) IncrementOutcome(status string, signals []string) {
	if m == nil {
		return
	}
	m.DecisionOutcome.WithLabelValues(status).Inc()
	for _, s := range signals {
		m.Signals.WithLabelValues(s).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementResolution(outcome string) {
	if m != nil {
		m.Resolutions.WithLabelValues(outcome).Inc()
	}
}
