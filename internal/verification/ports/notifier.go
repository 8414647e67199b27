package ports

import (
	"context"

	"surebet/internal/verification/models"
)

// Notifier tells compliance staff about attempts that need or received a
// manual review.
type Notifier interface {
	ReviewRequested(ctx context.Context, attempt *models.Attempt) error
	ReviewResolved(ctx context.Context, attempt *models.Attempt) error
}
