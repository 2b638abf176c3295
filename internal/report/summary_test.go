package report

import (
	"testing"
	"time"

	"zenfin/internal/core"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty subset must yield all zeros, got %+v", s)
	}
}

func TestSummarizeBalanceIdentity(t *testing.T) {
	txs := []core.Transaction{
		tx("a", day(2025, time.March, 5), core.Income, core.CategorySalario, 500000, true),
		tx("b", day(2025, time.March, 7), core.Expense, core.CategoryAluguel, 120000, true),
		tx("c", day(2025, time.March, 9), core.Expense, core.CategoryMercado, 34050, true),
		tx("d", day(2025, time.March, 9), core.Income, core.CategoryOutrasReceitas, 1000, true),
	}
	s := Summarize(txs)
	if s.Income.Cents != 501000 {
		t.Fatalf("income = %d", s.Income.Cents)
	}
	if s.Expense.Cents != 154050 {
		t.Fatalf("expense = %d", s.Expense.Cents)
	}
	if s.Balance.Cents != s.Income.Cents-s.Expense.Cents {
		t.Fatalf("balance identity broken: %+v", s)
	}
}
