package verification

import (
	"context"

	"github.com/google/uuid"

	"surebet/internal/verification/models"
)

// Store persists verification attempts. Implementations return
// sentinel.ErrNotFound for unknown ids and sentinel.ErrConflict when a
// resolution targets an attempt that is not awaiting review.
type Store interface {
	Save(ctx context.Context, attempt *models.Attempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Attempt, error)
	ListPendingReviews(ctx context.Context, limit int) ([]*models.Attempt, error)
	Resolve(ctx context.Context, id uuid.UUID, resolution models.Resolution) (*models.Attempt, error)
	Stats(ctx context.Context) (models.Stats, error)
}
