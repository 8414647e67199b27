package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"surebet/pkg/platform/httputil"
	"surebet/pkg/requestcontext"
)

type Handler struct {
	cookies *CookieManager
	logger  *slog.Logger
}

func NewHandler(cookies *CookieManager, logger *slog.Logger) *Handler {
	return &Handler{cookies: cookies, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/auth/session", h.HandleCurrent)
	r.Delete("/api/auth/session", h.HandleSignOut)
}

type Response struct {
	SessionID string    `json:"session_id"`
	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleCurrent handles GET /api/auth/session.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	sess, err := h.cookies.Current(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Response{
		SessionID: sess.ID.String(),
		SubjectID: sess.SubjectID,
		Email:     sess.Email,
		Device:    sess.Device,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
}

// HandleSignOut handles DELETE /api/auth/session.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.cookies.Current(r)
	if err != nil {
		// Signing out without a session still clears a stale cookie.
		h.cookies.clear(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ctx = requestcontext.WithSession(ctx, sess.SubjectID, sess.ID.String(), sess.Email)
	if err := h.cookies.End(ctx, w, sess.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke session",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "session revoked",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sess.ID,
	)
	w.WriteHeader(http.StatusNoContent)
}
