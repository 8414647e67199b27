package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"surebet/internal/decision"
	"surebet/internal/verification/models"
	"surebet/pkg/platform/sentinel"
)

// InMemoryStore keeps attempts in a map. Used when no database is configured
// and in tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	attempts map[uuid.UUID]*models.Attempt
}

func New() *InMemoryStore {
	return &InMemoryStore{attempts: make(map[uuid.UUID]*models.Attempt)}
}

func (s *InMemoryStore) Save(_ context.Context, attempt *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attempts[attempt.ID]; exists {
		return sentinel.ErrConflict
	}
	s.attempts[attempt.ID] = clone(attempt)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

// ListPendingReviews returns unresolved review attempts, oldest first.
func (s *InMemoryStore) ListPendingReviews(_ context.Context, limit int) ([]*models.Attempt, error) {
	s.mu.RLock()
	var out []*models.Attempt
	for _, a := range s.attempts {
		if a.AwaitingReview() {
			out = append(out, clone(a))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EvaluatedAt.Before(out[j].EvaluatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Resolve(_ context.Context, id uuid.UUID, resolution models.Resolution) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !a.AwaitingReview() {
		return nil, sentinel.ErrConflict
	}
	res := resolution
	a.Resolution = &res
	return clone(a), nil
}

func (s *InMemoryStore) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.Stats{ByStatus: make(map[decision.Status]int)}
	for _, a := range s.attempts {
		stats.Total++
		stats.ByStatus[a.Decision.Status]++
		if a.AwaitingReview() {
			stats.PendingReviews++
		}
		if a.Decision.IsSystemError() {
			stats.SystemErrors++
		}
	}
	return stats, nil
}

func clone(a *models.Attempt) *models.Attempt {
	c := *a
	c.Decision.Reasons = slices.Clone(a.Decision.Reasons)
	c.Decision.Signals = slices.Clone(a.Decision.Signals)
	if a.Resolution != nil {
		r := *a.Resolution
		c.Resolution = &r
	}
	return &c
}
