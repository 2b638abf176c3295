package report

import (
	"testing"
	"time"

	"zenfin/internal/core"
)

func tx(id string, date time.Time, kind core.Kind, cat core.Category, cents int64, paid bool) core.Transaction {
	return core.Transaction{
		ID:         id,
		Amount:     core.Money{Cents: cents},
		Date:       date,
		Kind:       kind,
		Category:   cat,
		Recurrence: core.Unique,
		IsPaid:     paid,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestFilterMonth(t *testing.T) {
	march := Month{Year: 2025, Month: time.March}
	txs := []core.Transaction{
		tx("a", day(2025, time.March, 1), core.Expense, core.CategoryMercado, 100, true),
		tx("b", day(2025, time.February, 28), core.Expense, core.CategoryMercado, 200, true),
		tx("c", day(2025, time.March, 31), core.Income, core.CategorySalario, 300, true),
		tx("d", day(2024, time.March, 15), core.Expense, core.CategoryCasa, 400, true),
	}
	got := FilterMonth(txs, march)
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("filter must preserve snapshot order, got %s,%s", got[0].ID, got[1].ID)
	}
}

func TestMonthOfUsesUTC(t *testing.T) {
	// 23:30 on Jan 31 in UTC-3 is already Feb 1 in UTC.
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	boundary := time.Date(2025, time.January, 31, 23, 30, 0, 0, saoPaulo)
	if m := MonthOf(boundary); m.Month != time.February {
		t.Fatalf("expected February bucket, got %v", m)
	}
}

func TestMonthAddMonths(t *testing.T) {
	jan := Month{Year: 2025, Month: time.January}
	if got := jan.AddMonths(-1); got != (Month{Year: 2024, Month: time.December}) {
		t.Fatalf("expected Dec 2024, got %v", got)
	}
	if got := jan.AddMonths(11); got != (Month{Year: 2025, Month: time.December}) {
		t.Fatalf("expected Dec 2025, got %v", got)
	}
}

func TestMonthLabel(t *testing.T) {
	if l := (Month{Year: 2025, Month: time.September}).Label(); l != "set" {
		t.Fatalf("expected pt-BR label set, got %s", l)
	}
}
