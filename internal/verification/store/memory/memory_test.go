package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surebet/internal/decision"
	"surebet/internal/verification/models"
	"surebet/pkg/platform/sentinel"
)

func newAttempt(status decision.Status, at time.Time) *models.Attempt {
	d := decision.Decision{Status: status}
	switch status {
	case decision.StatusReview:
		d.Signals = []decision.Signal{decision.SignalNameMismatch}
		d.Reasons = []string{"name differs"}
	case decision.StatusFailure:
		d = decision.SystemError()
	}
	return &models.Attempt{
		ID:          uuid.New(),
		ApplicantID: uuid.New(),
		Email:       "jane@example.com",
		Claim:       decision.IdentityClaim{FullName: "Jane Doe", Country: "GB"},
		Decision:    d,
		EvaluatedAt: at,
	}
}

func TestSaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAttempt(decision.StatusReview, time.Now())

	require.NoError(t, s.Save(ctx, a))
	assert.ErrorIs(t, s.Save(ctx, a), sentinel.ErrConflict)

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got.Decision.Reasons[0] = "mutated"
	again, _ := s.FindByID(ctx, a.ID)
	assert.Equal(t, "name differs", again.Decision.Reasons[0], "store hands out copies")

	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPendingReviewsAndResolve(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := newAttempt(decision.StatusReview, base)
	newer := newAttempt(decision.StatusReview, base.Add(time.Minute))
	done := newAttempt(decision.StatusSuccess, base)
	for _, a := range []*models.Attempt{newer, done, older} {
		require.NoError(t, s.Save(ctx, a))
	}

	pending, err := s.ListPendingReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)

	limited, _ := s.ListPendingReviews(ctx, 1)
	assert.Len(t, limited, 1)

	res := models.Resolution{Outcome: models.ResolutionApproved, Reviewer: "ops@surebet", ResolvedAt: base.Add(time.Hour)}
	resolved, err := s.Resolve(ctx, older.ID, res)
	require.NoError(t, err)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, decision.StatusReview, resolved.Decision.Status, "decision is never rewritten")

	_, err = s.Resolve(ctx, older.ID, res)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	_, err = s.Resolve(ctx, done.ID, res)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	_, err = s.Resolve(ctx, uuid.New(), res)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	pending, _ = s.ListPendingReviews(ctx, 0)
	assert.Len(t, pending, 1)
}

func TestConcurrentResolveSettlesOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAttempt(decision.StatusReview, time.Now())
	require.NoError(t, s.Save(ctx, a))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Resolve(ctx, a.ID, models.Resolution{Outcome: models.ResolutionRejected}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	require.NoError(t, s.Save(ctx, newAttempt(decision.StatusSuccess, now)))
	require.NoError(t, s.Save(ctx, newAttempt(decision.StatusSuccess, now)))
	require.NoError(t, s.Save(ctx, newAttempt(decision.StatusReview, now)))
	require.NoError(t, s.Save(ctx, newAttempt(decision.StatusFailure, now)))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[decision.StatusSuccess])
	assert.Equal(t, 1, stats.PendingReviews)
	assert.Equal(t, 1, stats.SystemErrors)
}
