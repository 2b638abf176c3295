package report

import "zenfin/internal/core"

// Summary holds the income/expense totals of one period.
// Balance is always Income minus Expense.
type Summary struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// Summarize reduces a period-filtered subset into totals. An empty subset
// yields the zero Summary; this never fails.
func Summarize(subset []core.Transaction) Summary {
	var s Summary
	for _, t := range subset {
		switch t.Kind {
		case core.Income:
			s.Income.Cents += t.Amount.Cents
		case core.Expense:
			s.Expense.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expense.Cents
	return s
}
