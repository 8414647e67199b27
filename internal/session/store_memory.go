package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"surebet/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process. Used when no Redis URL is
// configured.
type InMemoryStore struct {
	items *cache.Cache
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: cache.New(DefaultTTL, 10*time.Minute)}
}

func (s *InMemoryStore) Save(_ context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	cp := *sess
	s.items.Set(sess.ID.String(), &cp, ttl)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id uuid.UUID) (*Session, error) {
	v, ok := s.items.Get(id.String())
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v.(*Session)
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.items.Delete(id.String())
	return nil
}
