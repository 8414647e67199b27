package accessgate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"surebet/internal/platform/metrics"
	"surebet/pkg/platform/audit"
	"surebet/pkg/platform/httputil"
	"surebet/pkg/requestcontext"
)

// SessionChecker reports whether a request carries a live session.
type SessionChecker interface {
	Authenticated(r *http.Request) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// outcomeRejected counts geo-only paths answered with a JSON 451.
const outcomeRejected = "rejected"

type regionBlockedResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Middleware enforces the gate on page requests, and the geo rule alone on
// geo-only API paths.
type Middleware struct {
	gate     *Gate
	excluded []string
	geoOnly  []string
	resolver GeoResolver
	sessions SessionChecker
	denial   http.Handler
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
}

type Option func(*Middleware)

func WithResolver(r GeoResolver) Option {
	return func(m *Middleware) {
		m.resolver = r
	}
}

// WithDenialHandler sets the page served, with status 451, to blocked
// visitors.
func WithDenialHandler(h http.Handler) Option {
	return func(m *Middleware) {
		m.denial = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditor = p
	}
}

func NewMiddleware(p Policy, sessions SessionChecker, opts ...Option) *Middleware {
	m := &Middleware{
		gate:     New(p),
		excluded: append([]string(nil), p.ExcludedPrefixes...),
		geoOnly:  append([]string(nil), p.GeoOnlyPrefixes...),
		resolver: NewHeaderResolver(p.GeoHeaders),
		sessions: sessions,
		denial:   http.HandlerFunc(DenialPage),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasAnyPrefix(r.URL.Path, m.geoOnly) {
			m.geoCheck(w, r, next)
			return
		}
		if hasAnyPrefix(r.URL.Path, m.excluded) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		loc := m.resolver.Resolve(r)
		out := m.gate.Evaluate(Request{
			Path:          r.URL.Path,
			Location:      loc,
			Authenticated: m.sessions != nil && m.sessions.Authenticated(r),
		})
		m.metrics.IncGateOutcome(string(out.Kind))

		switch out.Kind {
		case OutcomeRewrite:
			m.denied(ctx, r, loc)
			rewritten := r.Clone(ctx)
			rewritten.URL.Path = out.Path
			rewritten.URL.RawPath = ""
			m.denial.ServeHTTP(&legalStatusWriter{ResponseWriter: w}, rewritten)
		case OutcomeRedirect:
			http.Redirect(w, r, out.URL, http.StatusTemporaryRedirect)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (m *Middleware) geoCheck(w http.ResponseWriter, r *http.Request, next http.Handler) {
	loc := m.resolver.Resolve(r)
	if !m.gate.GeoBlocked(loc) {
		m.metrics.IncGateOutcome(string(OutcomePass))
		next.ServeHTTP(w, r)
		return
	}
	m.metrics.IncGateOutcome(outcomeRejected)
	m.denied(r.Context(), r, loc)
	httputil.WriteJSON(w, http.StatusUnavailableForLegalReasons, regionBlockedResponse{
		Error:            "region_blocked",
		ErrorDescription: "SureBet is not available in your region",
	})
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *Middleware) denied(ctx context.Context, r *http.Request, loc Location) {
	requestID := requestcontext.RequestID(ctx)
	m.logger.InfoContext(ctx, "request geo-blocked",
		"request_id", requestID,
		"path", r.URL.Path,
		"location", loc.String(),
	)
	if m.auditor == nil {
		return
	}
	err := m.auditor.Emit(ctx, audit.Event{
		Subject:   requestcontext.Subject(ctx),
		Action:    string(audit.EventAccessDenied),
		Decision:  "denied",
		Reason:    "geo_blocked",
		RequestID: requestID,
		IP:        requestcontext.ClientIP(ctx),
		Country:   loc.String(),
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to emit access denied audit event",
			"request_id", requestID,
			"error", err,
		)
	}
}

// legalStatusWriter turns whatever status the denial page writes into 451.
type legalStatusWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *legalStatusWriter) WriteHeader(int) {
	if w.wrote {
		return
	}
	w.wrote = true
	w.ResponseWriter.WriteHeader(http.StatusUnavailableForLegalReasons)
}

func (w *legalStatusWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusUnavailableForLegalReasons)
	}
	return w.ResponseWriter.Write(b)
}

// DenialPage is the default page for blocked visitors.
func DenialPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnavailableForLegalReasons)
	_, _ = w.Write([]byte(denialHTML))
}

const denialHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>SureBet is not available in your region</title></head>
<body>
<h1>SureBet is not available in your region</h1>
<p>Online betting is not offered where you are located.</p>
</body>
</html>
`
