package worker

import (
	"context"
	"log/slog"

	audit "ppdb/pkg/platform/audit"
)

// Worker drains queued audit events from a channel and persists them, keeping
// the request path free of audit I/O for security and operations events.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. A failed append is logged and
// the loop continues; queued events are best-effort by contract.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("audit append failed", "action", event.Action, "error", err)
			}
		}
	}
}
