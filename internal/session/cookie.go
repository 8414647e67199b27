package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	dErrors "surebet/pkg/domain-errors"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "surebet-session"

type CookieConfig struct {
	Name   string
	Secure bool
}

// CookieManager moves session tokens in and out of the session cookie.
type CookieManager struct {
	service *Service
	name    string
	secure  bool
}

func NewCookieManager(service *Service, cfg CookieConfig) *CookieManager {
	name := cfg.Name
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieManager{service: service, name: name, secure: cfg.Secure}
}

// Issue establishes a session for the subject and sets the cookie.
func (m *CookieManager) Issue(w http.ResponseWriter, r *http.Request, subjectID, email string) error {
	issued, err := m.service.Establish(r.Context(), Subject{ID: subjectID, Email: email})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    issued.Token,
		Path:     "/",
		MaxAge:   int(m.service.TTL().Seconds()),
		Expires:  issued.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the session behind the request cookie.
func (m *CookieManager) Current(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	return m.service.Validate(r.Context(), c.Value)
}

// Authenticated reports whether the request carries a live session.
func (m *CookieManager) Authenticated(r *http.Request) bool {
	_, err := m.Current(r)
	return err == nil
}

// End revokes the session and clears the cookie.
func (m *CookieManager) End(ctx context.Context, w http.ResponseWriter, id uuid.UUID) error {
	m.clear(w)
	return m.service.Revoke(ctx, id)
}

func (m *CookieManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
