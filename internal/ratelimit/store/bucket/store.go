// Package bucket stores sliding-window request counters.
package bucket

import (
	"context"
	"math"
	"time"

	"surebet/internal/ratelimit/models"
)

// Store records one request against key and reports whether it fits in limit
// requests per window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
