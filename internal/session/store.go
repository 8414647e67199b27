package session

import (
	"context"

	"github.com/google/uuid"
)

// Store persists session records. Find returns sentinel.ErrNotFound for
// unknown, expired or revoked sessions.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
