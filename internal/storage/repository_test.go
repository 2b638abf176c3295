package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zenfin/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "zenfin.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testDraft(cat core.Category, cents int64, d time.Time) core.TransactionDraft {
	return core.TransactionDraft{
		Description: "t",
		Amount:      core.Money{Cents: cents},
		Date:        d,
		Kind:        core.Expense,
		Category:    cat,
		Recurrence:  core.Unique,
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// A second run hits ErrNoChange and must not fail.
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestMigrationsSeedTemplates(t *testing.T) {
	repo := newTestRepo(t)
	tpls, err := repo.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	want := core.DefaultRecurringCategories()
	if len(tpls) != len(want) {
		t.Fatalf("expected %d seeded templates, got %d", len(want), len(tpls))
	}
	for i, tpl := range tpls {
		if tpl.Category != want[i] {
			t.Fatalf("template %d: expected %s, got %s", i, want[i], tpl.Category)
		}
		if !tpl.IsActive || tpl.DefaultAmount.Cents != 0 {
			t.Fatalf("seed template wrong: %+v", tpl)
		}
	}
}

func TestInsertAndListOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older, err := repo.Insert(ctx, testDraft(core.CategoryMercado, 100, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)), true)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	sameDayFirst, err := repo.Insert(ctx, testDraft(core.CategoryLuz, 200, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)), false)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	sameDaySecond, err := repo.Insert(ctx, testDraft(core.CategoryAgua, 300, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)), false)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantIDs := []string{sameDaySecond.ID, sameDayFirst.ID, older.ID}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("row %d out of order: got %s want %s", i, got[i].ID, id)
		}
	}
	if !got[2].Date.Equal(older.Date) {
		t.Fatalf("date round-trip broken: got %v want %v", got[2].Date, older.Date)
	}
}

func TestSetPaidAndSyncState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, _ := repo.Insert(ctx, testDraft(core.CategoryAluguel, 120000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), false)

	if err := repo.SetPaid(ctx, tx.ID, true); err != nil {
		t.Fatalf("set paid: %v", err)
	}
	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil || !got.IsPaid {
		t.Fatalf("paid flag not persisted: %+v %v", got, err)
	}

	if err := repo.SetPaid(ctx, "missing", true); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.MarkSynced(ctx, tx.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, tx.ID); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}
}

func TestTemplateUpsertKeepsPosition(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.SaveTemplate(ctx, core.RecurringTemplate{
		Category:      core.CategoryLuz,
		IsActive:      false,
		DefaultAmount: core.Money{Cents: 15000},
	})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}

	tpls, _ := repo.ListTemplates(ctx)
	if len(tpls) != len(core.DefaultRecurringCategories()) {
		t.Fatalf("upsert must not grow the set: %d", len(tpls))
	}
	if tpls[2].Category != core.CategoryLuz || tpls[2].IsActive || tpls[2].DefaultAmount.Cents != 15000 {
		t.Fatalf("template not updated in place: %+v", tpls[2])
	}
}

func TestLimitLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	l, err := repo.SaveLimit(ctx, core.SpendingLimit{Category: core.CategoryMercado, Limit: core.Money{Cents: 100000}})
	if err != nil || l.ID == "" {
		t.Fatalf("save limit: %+v %v", l, err)
	}

	l.Limit.Cents = 80000
	if _, err := repo.SaveLimit(ctx, l); err != nil {
		t.Fatalf("update limit: %v", err)
	}
	limits, _ := repo.ListLimits(ctx)
	if len(limits) != 1 || limits[0].Limit.Cents != 80000 {
		t.Fatalf("update must replace in place: %+v", limits)
	}

	if err := repo.DeleteLimit(ctx, l.ID); err != nil {
		t.Fatalf("delete limit: %v", err)
	}
	if err := repo.DeleteLimit(ctx, l.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
