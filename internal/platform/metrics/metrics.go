package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-wide HTTP metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	GateOutcomes    *prometheus.CounterVec
	RateLimits      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "surebet_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		GateOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_access_gate_outcomes_total",
			Help: "Access gate outcomes by kind (pass, rewrite, redirect)",
		}, []string{"outcome"}),

		RateLimits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "surebet_rate_limit_checks_total",
			Help: "Rate limit checks by rule and result (allowed, rejected, error)",
		}, []string{"rule", "result"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncGateOutcome counts one access gate evaluation.
func (m *Metrics) IncGateOutcome(outcome string) {
	if m == nil {
		return
	}
	m.GateOutcomes.WithLabelValues(outcome).Inc()
}

// IncRateLimit counts one rate limit check.
func (m *Metrics) IncRateLimit(rule, result string) {
	if m == nil {
		return
	}
	m.RateLimits.WithLabelValues(rule, result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
