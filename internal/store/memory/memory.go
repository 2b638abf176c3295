package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"zenfin/internal/core"
)

// Store keeps everything in process memory. It is the default backend for
// local runs and the fixture for service tests.
type Store struct {
	mu        sync.Mutex
	txs       []core.Transaction
	templates []core.RecurringTemplate
	limits    []core.SpendingLimit
}

// New returns a store seeded with the default recurring templates.
func New() *Store {
	return &Store{templates: core.SeedTemplates()}
}

// List returns the transactions newest first. The returned slice is a copy.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	for i, t := range s.txs {
		out[len(s.txs)-1-i] = t
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, draft core.TransactionDraft, paid bool) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:            uuid.NewString(),
		Description:   draft.Description,
		Amount:        draft.Amount,
		Date:          draft.Date,
		Kind:          draft.Kind,
		Category:      draft.Category,
		PaymentMethod: draft.PaymentMethod,
		Recurrence:    draft.Recurrence,
		IsPaid:        paid,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *Store) SetPaid(_ context.Context, id string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].IsPaid = paid
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListTemplates(_ context.Context) ([]core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringTemplate(nil), s.templates...), nil
}

// SaveTemplate upserts by category, preserving the existing position so the
// commitment checklist keeps a stable order.
func (s *Store) SaveTemplate(_ context.Context, t core.RecurringTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].Category == t.Category {
			s.templates[i] = t
			return nil
		}
	}
	s.templates = append(s.templates, t)
	return nil
}

func (s *Store) ListLimits(_ context.Context) ([]core.SpendingLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SpendingLimit(nil), s.limits...), nil
}

// SaveLimit upserts by id; a limit without an id gets one assigned.
func (s *Store) SaveLimit(_ context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	if err := l.Validate(); err != nil {
		return core.SpendingLimit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	for i := range s.limits {
		if s.limits[i].ID == l.ID {
			s.limits[i] = l
			return l, nil
		}
	}
	s.limits = append(s.limits, l)
	return l, nil
}

func (s *Store) DeleteLimit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.limits {
		if s.limits[i].ID == id {
			s.limits = append(s.limits[:i], s.limits[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}
