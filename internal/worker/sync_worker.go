// Package worker mirrors the local transaction log to a remote copy. It
// consumes sync messages from the queue and keeps a periodic sweep as a
// backup for messages lost while the worker was down.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zenfin/internal/amqp"
	"zenfin/internal/core"
	"zenfin/internal/storage"
)

// Mirror receives transactions on the remote side. Append returns an opaque
// remote reference used only for logging.
type Mirror interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
}

// LogMirror is the default mirror: it writes the transaction to the log and
// accepts it. Useful until a real remote backend is configured.
type LogMirror struct{}

func (LogMirror) Append(ctx context.Context, t core.Transaction) (string, error) {
	slog.InfoContext(ctx, "Mirroring transaction",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"is_paid", t.IsPaid)
	return "log:" + t.ID, nil
}

// SyncWorker moves transactions from the SQLite log to the mirror and keeps
// the per-row sync status current.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    Mirror
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirror Mirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one sync message from the queue. A returned
// error requeues the message; a transaction that no longer exists is dropped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Sync message for unknown transaction, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	return w.mirrorTransaction(ctx, t)
}

// ProcessPending sweeps transactions whose sync status is still PENDING or
// ERROR. This is the backup path for lost queue messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.mirrorTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", t.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch once at boot, recovering
// from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, t := range pending {
		if err := w.mirrorTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.mirror.Append(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, t.ID); err != nil {
		// The mirror write landed; only the local flag is off.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", t.ID,
		"mirror_ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}
