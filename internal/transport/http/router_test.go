package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"surebet/internal/accessgate"
	"surebet/internal/platform/metrics"
	"surebet/internal/session"
	verificationhandler "surebet/internal/verification/handler"
	"surebet/pkg/platform/middleware/admin"
	"surebet/pkg/platform/middleware/requestid"
	"surebet/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	cookies *session.CookieManager
	router  http.Handler
	healthy error
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := session.New(session.NewInMemoryStore(), "router-test-key")
	s.Require().NoError(err)
	s.cookies = session.NewCookieManager(svc, session.CookieConfig{})

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.healthy = nil
	s.router = NewRouter(Deps{
		Logger:         logger,
		Metrics:        metrics.NewWithRegisterer(prometheus.NewRegistry()),
		Verification:   verificationhandler.New(nil, nil, s.cookies, logger),
		Sessions:       s.cookies,
		SessionHandler: session.NewHandler(s.cookies, logger),
		Gate:           accessgate.NewMiddleware(accessgate.DefaultPolicy(), session.ContextChecker{}, accessgate.WithLogger(logger)),
		AdminTokenHash: string(hash),
		HealthChecks: []HealthCheck{{
			Name:  "postgres",
			Check: func(context.Context) error { return s.healthy },
		}},
	})
}

func (s *RouterSuite) get(path string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealth() {
	rec := s.get("/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"postgres":"ok"`)
	s.NotEmpty(rec.Header().Get(requestid.Header))

	s.healthy = errors.New("connection refused")
	rec = s.get("/healthz")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), "degraded")
}

func (s *RouterSuite) TestMetricsEndpoint() {
	rec := s.get("/metrics")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestGateGuardsPages() {
	rec := s.get("/dashboard")
	s.Equal(http.StatusTemporaryRedirect, rec.Code)
	s.Equal("/signin?redirectedFrom=%2Fdashboard", rec.Header().Get("Location"))

	rec = s.get("/signin", func(r *http.Request) { r.Header.Set("CF-IPCountry", "CU") })
	s.Equal(http.StatusUnavailableForLegalReasons, rec.Code)

	rec = s.get("/signin")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Sign in")
}

func (s *RouterSuite) TestSessionOpensDashboard() {
	issue := httptest.NewRecorder()
	s.Require().NoError(s.cookies.Issue(issue, httptest.NewRequest(http.MethodPost, "/", nil), "applicant-1", "a@b.co"))
	cookie := issue.Result().Cookies()[0]

	rec := s.get("/dashboard", func(r *http.Request) { r.AddCookie(cookie) })
	s.Equal(http.StatusOK, rec.Code)

	rec = s.get("/signup", func(r *http.Request) { r.AddCookie(cookie) })
	s.Equal(http.StatusTemporaryRedirect, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	rec = s.get("/api/auth/session", func(r *http.Request) { r.AddCookie(cookie) })
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestKYCAPIGeoBlocked() {
	rec := s.get("/api/kyc/attempts/not-a-uuid", func(r *http.Request) { r.Header.Set("CF-IPCountry", "KP") })
	testutil.AssertStatusAndError(s.T(), rec, http.StatusUnavailableForLegalReasons, "region_blocked")

	rec = s.get("/api/kyc/attempts/not-a-uuid", func(r *http.Request) { r.Header.Set("CF-IPCountry", "GB") })
	testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "bad_request")
}

func (s *RouterSuite) TestSessionAPIBypassesGeoBlock() {
	rec := s.get("/api/auth/session", func(r *http.Request) { r.Header.Set("CF-IPCountry", "KP") })
	s.NotEqual(http.StatusUnavailableForLegalReasons, rec.Code)
}

func (s *RouterSuite) TestSignOutWithoutCookie() {
	req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/auth/session", nil)
	rec := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *RouterSuite) TestAdminRequiresToken() {
	rec := s.get("/api/admin/kyc/stats")
	testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "unauthorized")

	rec = s.get("/api/admin/kyc/reviews?limit=0", func(r *http.Request) { r.Header.Set(admin.TokenHeader, "admin") })
	s.Equal(http.StatusBadRequest, rec.Code, "token accepted, handler validates the limit")
}
