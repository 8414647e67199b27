// Package publisher emits audit events to a store, optionally through a
// bounded in-process queue so request paths never wait on the sink.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "surebet/pkg/platform/audit"
	"surebet/pkg/requestcontext"
)

var ErrClosed = errors.New("audit publisher closed")

// Publisher writes audit events to a store. In async mode events are queued
// on a bounded channel and appended by a single background goroutine; when
// the queue is full the event is appended synchronously instead of dropped.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	queue  chan audit.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a queue of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan audit.Event, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records an event. Missing timestamp, category and request id are
// filled in from the context.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		// Queue full: fall back to a synchronous append.
		return p.store.Append(context.WithoutCancel(ctx), event)
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"category", event.Category,
				"error", err,
			)
		}
	}
}

// List returns events for a subject when the underlying store supports it.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, errors.New("audit store does not support listing")
	}
	return lister.ListBySubject(ctx, subject)
}

// Close stops accepting events and drains the queue.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
	return nil
}
