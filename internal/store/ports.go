package store

import (
	"context"

	"zenfin/internal/core"
)

// Ports for persistence adapters.
type (
	// TransactionStore is the snapshot of money movements. List returns the
	// store order the report engine depends on: newest first, stable across
	// calls. SetPaid returns core.ErrNotFound for unknown ids.
	TransactionStore interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Insert(ctx context.Context, draft core.TransactionDraft, paid bool) (core.Transaction, error)
		SetPaid(ctx context.Context, id string, paid bool) error
	}

	// TemplateStore keeps one recurring template per category. SaveTemplate
	// upserts by category.
	TemplateStore interface {
		ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
		SaveTemplate(ctx context.Context, t core.RecurringTemplate) error
	}

	// LimitStore keeps per-category spending ceilings.
	LimitStore interface {
		ListLimits(ctx context.Context) ([]core.SpendingLimit, error)
		SaveLimit(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error)
		DeleteLimit(ctx context.Context, id string) error
	}
)
