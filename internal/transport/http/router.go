package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"surebet/internal/accessgate"
	"surebet/internal/platform/metrics"
	"surebet/internal/session"
	verificationhandler "surebet/internal/verification/handler"
	"surebet/pkg/platform/httputil"
	"surebet/pkg/platform/middleware/accesslog"
	"surebet/pkg/platform/middleware/admin"
	"surebet/pkg/platform/middleware/compress"
	"surebet/pkg/platform/middleware/metadata"
	"surebet/pkg/platform/middleware/requestid"
	"surebet/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps is everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Verification   *verificationhandler.Handler
	Sessions       *session.CookieManager
	SessionHandler *session.Handler
	Gate           *accessgate.Middleware
	// AdminTokenHash guards the admin API. Admin routes are not mounted when
	// it is empty.
	AdminTokenHash string
	HealthChecks   []HealthCheck
}

// NewRouter assembles middleware, API routes and the gated page stubs.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(accesslog.Middleware(d.Logger, d.Metrics))
	r.Use(compress.Gzip)
	if d.Sessions != nil {
		r.Use(d.Sessions.Middleware)
	}
	if d.Gate != nil {
		r.Use(d.Gate.Handler)
	}

	r.Get("/healthz", healthHandler(d.HealthChecks))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if d.Verification != nil {
		d.Verification.Register(r)
		if d.AdminTokenHash != "" {
			r.Group(func(r chi.Router) {
				r.Use(admin.RequireAdminToken(d.AdminTokenHash, d.Logger))
				d.Verification.RegisterAdmin(r)
			})
		}
	}
	if d.SessionHandler != nil {
		d.SessionHandler.Register(r)
	}

	r.Get("/", page("SureBet", "Bet on anything, safely."))
	r.Get("/blocked", accessgate.DenialPage)
	r.Get("/signin", page("Sign in", "Verify your identity to continue."))
	r.Get("/signup", page("Sign up", "Start identity verification."))
	r.Get("/dashboard", page("Dashboard", "Welcome back."))

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				resp.Checks[c.Name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
