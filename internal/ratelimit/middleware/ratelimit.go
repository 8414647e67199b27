// Package middleware enforces per client IP request limits on the KYC
// submission endpoints.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"surebet/internal/platform/metrics"
	"surebet/internal/ratelimit/models"
	"surebet/pkg/platform/httputil"
	"surebet/pkg/requestcontext"
)

const unknownClient = "unknown"

type RateLimiter interface {
	Check(ctx context.Context, rule models.Rule, ip string) (*models.Result, bool, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for local demos).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit returns middleware applying rule to the caller's client IP.
// Limiter errors fail open.
func (m *Middleware) RateLimit(rule models.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = unknownClient
			}

			result, degraded, err := m.limiter.Check(ctx, rule, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit", "rule", rule.Name, "error", err)
				m.metrics.IncRateLimit(rule.Name, "error")
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result, degraded)
			if !result.Allowed {
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"rule", rule.Name,
					"request_id", requestcontext.RequestID(ctx),
				)
				m.metrics.IncRateLimit(rule.Name, "rejected")
				writeRateLimitExceeded(w, result)
				return
			}

			m.metrics.IncRateLimit(rule.Name, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result, degraded bool) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many verification attempts from this address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
