package report

import "zenfin/internal/core"

// LimitStatus is one spending limit with its month-to-date spend filled in.
type LimitStatus struct {
	Limit core.SpendingLimit
	Spent core.Money
}

// Ratio returns the spent fraction clamped to [0, 1]. A zero ceiling reads as
// 0% rather than failing on division by zero.
func (s LimitStatus) Ratio() float64 {
	if s.Limit.Limit.Cents <= 0 {
		return 0
	}
	r := float64(s.Spent.Cents) / float64(s.Limit.Limit.Cents)
	if r > 1 {
		return 1
	}
	return r
}

// TrackLimits computes each limit's month-to-date spend from the expense
// subset. Spent is always recomputed from the snapshot, never accumulated.
func TrackLimits(subset []core.Transaction, limits []core.SpendingLimit) []LimitStatus {
	out := make([]LimitStatus, 0, len(limits))
	for _, l := range limits {
		var spent int64
		for _, t := range subset {
			if t.Kind == core.Expense && t.Category == l.Category {
				spent += t.Amount.Cents
			}
		}
		out = append(out, LimitStatus{Limit: l, Spent: core.Money{Cents: spent}})
	}
	return out
}
