package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"surebet/internal/platform/metrics"
	"surebet/internal/ratelimit/models"
	"surebet/internal/ratelimit/store/bucket"
	"surebet/pkg/platform/circuit"
	"surebet/pkg/testutil"
)

var verifyRule = models.Rule{Name: "kyc_submit", Limit: 2, Window: time.Hour}

// flakyStore delegates to memory until broken is set.
type flakyStore struct {
	inner  *bucket.InMemoryBucketStore
	broken bool
}

func (f *flakyStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	if f.broken {
		return nil, errors.New("connection refused")
	}
	return f.inner.Allow(ctx, key, limit, window)
}

type RateLimitSuite struct {
	suite.Suite
	primary *flakyStore
	metrics *metrics.Metrics
	handler http.Handler
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.primary = &flakyStore{inner: bucket.NewInMemoryBucketStore()}
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	limiter := NewLimiter(s.primary, nil, circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	mw := New(limiter, nil, WithMetrics(s.metrics))
	s.handler = mw.RateLimit(verifyRule)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RateLimitSuite) do(ip string) *httptest.ResponseRecorder {
	req := testutil.WithClient(httptest.NewRequest(http.MethodPost, "/api/kyc/verify", nil), ip, "test-agent")
	return testutil.DoRequest(s.handler, req)
}

func (s *RateLimitSuite) TestRejectsOverLimit() {
	s.Equal(http.StatusOK, s.do("203.0.113.7").Code)
	w := s.do("203.0.113.7")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("0", w.Header().Get("X-RateLimit-Remaining"))

	w = s.do("203.0.113.7")
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.NotEmpty(w.Header().Get("Retry-After"))
	s.Contains(w.Body.String(), "rate_limit_exceeded")

	s.Equal(http.StatusOK, s.do("198.51.100.1").Code, "other clients are unaffected")
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.RateLimits.WithLabelValues("kyc_submit", "rejected")))
}

func (s *RateLimitSuite) TestFailsOpenBelowBreakerThreshold() {
	s.primary.broken = true

	w := s.do("203.0.113.7")
	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("X-RateLimit-Limit"))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.RateLimits.WithLabelValues("kyc_submit", "error")))
}

func (s *RateLimitSuite) TestOpenBreakerUsesFallback() {
	s.primary.broken = true
	s.do("203.0.113.7")

	w := s.do("203.0.113.7")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("degraded", w.Header().Get("X-RateLimit-Status"))

	s.do("203.0.113.7")
	w = s.do("203.0.113.7")
	s.Equal(http.StatusTooManyRequests, w.Code, "fallback still enforces the rule")

	s.primary.broken = false
	w = s.do("198.51.100.1")
	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("X-RateLimit-Status"), "one success closes the breaker")
}

func (s *RateLimitSuite) TestMissingClientIPSharesBucket() {
	s.do("")
	s.do("")
	s.Equal(http.StatusTooManyRequests, s.do("").Code)
}

func TestDisabledPassesThrough(t *testing.T) {
	mw := New(NewLimiter(nil, nil), nil, WithDisabled(true))
	h := mw.RateLimit(models.Rule{Name: "x", Limit: 0, Window: time.Minute})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
