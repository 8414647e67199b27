package middleware

import (
	"context"
	"log/slog"
	"time"

	"surebet/internal/ratelimit/models"
	"surebet/internal/ratelimit/store/bucket"
	"surebet/pkg/platform/circuit"
)

// Limiter checks rules against a primary bucket store and switches to an
// in-process fallback while the primary keeps failing.
type Limiter struct {
	primary  bucket.Store
	fallback *bucket.InMemoryBucketStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// NewLimiter builds a limiter. A nil primary means the fallback is the only
// store and checks never report degraded mode.
func NewLimiter(primary bucket.Store, logger *slog.Logger, opts ...circuit.Option) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		primary:  primary,
		fallback: bucket.NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit-primary", opts...),
		logger:   logger,
	}
}

// Check records one request by ip under rule. degraded is true when the
// answer came from the fallback store because the primary is unhealthy.
func (l *Limiter) Check(ctx context.Context, rule models.Rule, ip string) (result *models.Result, degraded bool, err error) {
	key := rule.Key(ip)
	if l.primary == nil {
		result, err = l.fallback.Allow(ctx, key, rule.Limit, rule.Window)
		return result, false, err
	}

	result, err = l.primary.Allow(ctx, key, rule.Limit, rule.Window)
	if err != nil {
		useFallback, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit store unhealthy, using in-memory fallback",
				"breaker", l.breaker.Name(),
				"error", err,
			)
		}
		if !useFallback {
			return nil, false, err
		}
		result, err = l.fallback.Allow(ctx, key, rule.Limit, rule.Window)
		return result, true, err
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit store recovered", "breaker", l.breaker.Name())
	}
	if usePrimary {
		return result, false, nil
	}
	result, err = l.fallback.Allow(ctx, key, rule.Limit, rule.Window)
	return result, true, err
}

// RunSweeper drops idle fallback windows every interval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := l.fallback.Sweep(); n > 0 {
				l.logger.DebugContext(ctx, "swept idle rate limit windows", "count", n)
			}
		}
	}
}
