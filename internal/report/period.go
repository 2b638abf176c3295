// Package report implements the period aggregation engine: month filtering,
// income/expense summaries, the six-month trend series, the category
// distribution and the recurring obligation reconciliation. Every function is
// a pure computation over an immutable transaction snapshot; nothing here
// touches a store or retains state between calls.
package report

import (
	"fmt"
	"time"

	"zenfin/internal/core"
)

// Month identifies a calendar month, the unit of aggregation.
// All date-to-month bucketing uses the transaction timestamp's UTC calendar;
// month-boundary transactions land in the UTC month of their timestamp.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf buckets a timestamp into its UTC calendar month.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

// AddMonths returns the month n months away, negative n going back in time.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

var shortMonthLabels = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// Label returns the short pt-BR month label used by chart axes.
func (m Month) Label() string {
	return shortMonthLabels[m.Month-1]
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FilterMonth selects the transactions dated inside m, preserving the
// snapshot's order. The result is a fresh slice; the input is never mutated.
func FilterMonth(txs []core.Transaction, m Month) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if m.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
