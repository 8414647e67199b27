package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"surebet/pkg/platform/audit/store/postgres"
)

const defaultBatchSize = 100

// Outbox is the read side of the audit outbox.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer delivers one message to the event bus.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Worker relays outbox entries to the event bus. Delivery is at-least-once:
// an entry is marked only after the producer acknowledged it.
type Worker struct {
	outbox    Outbox
	producer  Producer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

type Option func(*Worker)

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(outbox Outbox, producer Producer, interval time.Duration, opts ...Option) *Worker {
	w := &Worker{
		outbox:    outbox,
		producer:  producer,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were delivered.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, e := range entries {
		headers := map[string]string{"event_type": e.EventType, "outbox_id": e.ID.String()}
		if err := w.producer.Publish(ctx, e.AggregateID, e.Payload, headers); err != nil {
			publishErr = err
			break
		}
		delivered = append(delivered, e.ID)
	}

	if err := w.outbox.MarkPublished(ctx, delivered, time.Now()); err != nil {
		return 0, err
	}
	return len(delivered), publishErr
}
