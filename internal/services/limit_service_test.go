package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"zenfin/internal/core"
	"zenfin/internal/report"
	"zenfin/internal/store/memory"
)

func TestLimitSaveRejectsNonPositiveCeiling(t *testing.T) {
	st := memory.New()
	svc := NewLimitService(st, NewTransactionService(st, nil))

	_, err := svc.Save(context.Background(), core.SpendingLimit{Category: core.CategoryMercado})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestLimitMonthView(t *testing.T) {
	st := memory.New()
	txSvc := NewTransactionService(st, nil)
	svc := NewLimitService(st, txSvc)
	ctx := context.Background()
	march := report.Month{Year: 2025, Month: time.March}

	if _, err := svc.Save(ctx, core.SpendingLimit{Category: core.CategoryMercado, Limit: core.Money{Cents: 100000}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := txSvc.Create(ctx, newDraft(core.Expense, core.Unique, core.CategoryMercado, 30000)); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Outside the month, must not count.
	other := newDraft(core.Expense, core.Unique, core.CategoryMercado, 99999)
	other.Date = time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	if _, err := txSvc.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.MonthView(ctx, march)
	if err != nil {
		t.Fatalf("month view: %v", err)
	}
	if len(view) != 1 || view[0].Spent.Cents != 30000 {
		t.Fatalf("month view wrong: %+v", view)
	}
	if r := view[0].Ratio(); r != 0.3 {
		t.Fatalf("ratio = %f", r)
	}
}

func TestLimitDelete(t *testing.T) {
	st := memory.New()
	svc := NewLimitService(st, NewTransactionService(st, nil))
	ctx := context.Background()

	l, err := svc.Save(ctx, core.SpendingLimit{Category: core.CategoryLazer, Limit: core.Money{Cents: 5000}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, l.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
