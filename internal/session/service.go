// Package session issues and checks the signed session that lets a verified
// applicant past the protected routes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dErrors "surebet/pkg/domain-errors"
	"surebet/pkg/platform/audit"
	"surebet/pkg/platform/sentinel"
	"surebet/pkg/requestcontext"
)

// DefaultTTL is how long a session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store      Store
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
	auditor    AuditPublisher
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(store Store, signingKey string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	s := &Service{
		store:      store,
		signingKey: []byte(signingKey),
		ttl:        DefaultTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Establish creates a session for subject and signs its token.
func (s *Service) Establish(ctx context.Context, subject Subject) (*Issued, error) {
	if subject.ID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}
	now := requestcontext.Now(ctx)
	sess := &Session{
		ID:        uuid.New(),
		SubjectID: subject.ID,
		Email:     subject.Email,
		Device:    deviceName(requestcontext.DeviceInfo(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
	token, err := s.sign(sess)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session")
	}

	s.logAudit(ctx, audit.Event{
		Subject:  sess.SubjectID,
		Action:   string(audit.EventSessionCreated),
		ActorID:  sess.ID.String(),
		IP:       sess.ClientIP,
		Decision: "granted",
	})
	return &Issued{Token: token, Session: sess}, nil
}

// Validate checks the token signature and expiry and that the session has
// not been revoked.
func (s *Service) Validate(ctx context.Context, token string) (*Session, error) {
	c, err := s.parse(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(c.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	sess, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has been revoked")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.SubjectID != c.Subject || sess.Expired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return sess, nil
}

// Revoke ends a session. Revoking an unknown session is not an error.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.logAudit(ctx, audit.Event{
		Subject: requestcontext.Subject(ctx),
		Action:  string(audit.EventSessionRevoked),
		ActorID: id.String(),
	})
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit session audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

func deviceName(d requestcontext.Device) string {
	switch {
	case d.Browser == "" && d.OS == "":
		return ""
	case d.OS == "":
		return d.Browser
	case d.Browser == "":
		return d.OS
	}
	return fmt.Sprintf("%s on %s", d.Browser, d.OS)
}
