package services

import (
	"context"
	"fmt"
	"log/slog"

	"zenfin/internal/core"
	"zenfin/internal/store"
)

// SyncPublisher notifies the mirror queue about transaction changes.
// *amqp.Client satisfies it; services run fine without one.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// TransactionService orchestrates transaction writes across the store and the
// sync queue.
type TransactionService struct {
	store     store.TransactionStore
	publisher SyncPublisher
}

func NewTransactionService(s store.TransactionStore, publisher SyncPublisher) *TransactionService {
	return &TransactionService{store: s, publisher: publisher}
}

// Create validates the draft, applies the paid-at-creation rule and saves the
// transaction. The sync message is best effort: the local save already
// succeeded, so a queue failure is logged and swallowed.
func (s *TransactionService) Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.store.Insert(ctx, draft, draft.PaidAtCreation())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, t.ID, 1)
	return t, nil
}

// List returns the transaction snapshot in store order.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

// TogglePaid flips the paid flag of one transaction. core.ErrNotFound
// surfaces to the caller; the snapshot is untouched on failure.
func (s *TransactionService) TogglePaid(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load snapshot: %w", err)
	}

	for _, t := range txs {
		if t.ID != id {
			continue
		}
		if err := s.store.SetPaid(ctx, id, !t.IsPaid); err != nil {
			return core.Transaction{}, err
		}
		t.IsPaid = !t.IsPaid
		s.publishSync(ctx, t.ID, 2)
		return t, nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *TransactionService) publishSync(ctx context.Context, id string, version int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message")
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
}
