package worker

import (
	"context"
	"log/slog"

	audit "onboard/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Store
// failures are logged, not fatal: audit here is best-effort operational
// visibility, and losing one event must not take the worker down.
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

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Warn("audit event dropped", "action", event.Action, "error", err)
			}
		}
	}
}
