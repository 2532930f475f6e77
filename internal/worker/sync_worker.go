// Package worker follows expense change events and mirrors the saved set
// into the configured export destinations.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expenses/internal/events"
	"expenses/internal/export"
	applog "expenses/internal/log"
	"expenses/internal/storage"
)

// SyncWorker re-exports the repository contents whenever the set changes.
type SyncWorker struct {
	repo     storage.Repository
	exporter export.Exporter
	logger   *applog.Logger

	// mu serializes syncs from the consumer and the ticker.
	mu       sync.Mutex
	lastSync time.Time
}

func NewSyncWorker(repo storage.Repository, exporter export.Exporter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		repo:     repo,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChange processes one change event. The event only signals that the
// set moved; the repository is read again so a redelivered or out-of-order
// message still converges on the saved state.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *events.ExpenseChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing expense change",
		applog.FieldAction, msg.Action,
		applog.FieldExpenseName, msg.Name,
		"timestamp", msg.Timestamp)

	if last := w.LastSync(); !msg.Timestamp.IsZero() && msg.Timestamp.Before(last) {
		w.logger.DebugContext(ctx, "Change already covered by a later sync",
			applog.FieldAction, msg.Action,
			"last_sync", last.Format(time.RFC3339))
		return nil
	}

	return w.Sync(ctx)
}

// Sync loads the saved set and exports it.
func (w *SyncWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := time.Now()

	set, err := w.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	dest, err := w.exporter.Export(ctx, set)
	if err != nil {
		w.logger.ErrorContext(ctx, "Sync export failed",
			applog.FieldOperation, applog.OpSync,
			applog.FieldDestination, dest,
			applog.FieldError, err)
		return fmt.Errorf("export expenses: %w", err)
	}

	w.lastSync = started
	w.logger.InfoContext(ctx, "Expenses synced",
		applog.FieldOperation, applog.OpSync,
		applog.FieldCount, len(set),
		applog.FieldDestination, dest)
	return nil
}

// Run syncs once at startup, then on every interval tick until ctx is done.
// Tick failures are logged; the next tick retries.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}

// LastSync reports when the last successful sync started.
func (w *SyncWorker) LastSync() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSync
}

func (w *SyncWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.repo.Close()
}
