package audit

import (
	"context"
	"log/slog"

	"ppdb/pkg/requestcontext"
)

// Publisher emits audit events. Compliance events go through Emit with
// fail-closed semantics: the caller blocks until the write succeeds and must
// fail its operation otherwise. Security and operations events go through
// Queue, which never blocks the request path; a dropped event is logged and
// accepted.
type Publisher struct {
	store  Store
	inbox  chan<- Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithInbox routes queued events to a worker-drained channel instead of the
// store. Without it Queue appends synchronously, which is what tests want.
func WithInbox(inbox chan<- Event) Option {
	return func(p *Publisher) {
		p.inbox = inbox
	}
}

// NewPublisher creates a publisher over the given sink. For guaranteed
// delivery the store must be outbox-backed.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes the event. Returns an error when persistence
// fails; the calling operation must not proceed.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.store.Append(ctx, event)
}

// Queue hands the event off without blocking. When the inbox is full the
// event is dropped with a log line rather than stalling a login.
func (p *Publisher) Queue(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
		return
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event", "action", event.Action)
	}
}
