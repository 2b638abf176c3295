package report

import (
	"sort"

	"zenfin/internal/core"
)

// Slice is one category's share of a month's expenses. CumulativeBefore is
// the percent sum of all larger slices, letting a renderer lay the slices out
// as contiguous arcs.
type Slice struct {
	Category         core.Category
	Amount           core.Money
	Percent          float64
	CumulativeBefore float64
}

// ArcStart returns the slice's starting angle in degrees on a full circle.
func (s Slice) ArcStart() float64 {
	return 360 * s.CumulativeBefore / 100
}

// ArcSweep returns the slice's angular width in degrees.
func (s Slice) ArcSweep() float64 {
	return 360 * s.Percent / 100
}

// Distribution is a month's expense breakdown by category.
type Distribution struct {
	TotalExpense core.Money
	Slices       []Slice
}

// HasData reports whether there was anything to distribute.
func (d Distribution) HasData() bool {
	return len(d.Slices) > 0
}

// Distribute groups a month's expense subset by category. Slices are sorted
// descending by amount, ties broken by the taxonomy's declared order so the
// result is deterministic. Percentages are exact; rounding is left to the
// display layer. Income transactions in the subset are ignored.
func Distribute(subset []core.Transaction) Distribution {
	totals := make(map[core.Category]int64)
	for _, t := range subset {
		if t.Kind != core.Expense {
			continue
		}
		totals[t.Category] += t.Amount.Cents
	}

	var totalExpense int64
	slices := make([]Slice, 0, len(totals))
	for cat, cents := range totals {
		totalExpense += cents
		slices = append(slices, Slice{Category: cat, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Amount.Cents != slices[j].Amount.Cents {
			return slices[i].Amount.Cents > slices[j].Amount.Cents
		}
		return slices[i].Category.OrderOf() < slices[j].Category.OrderOf()
	})

	cumulative := 0.0
	for i := range slices {
		if totalExpense > 0 {
			slices[i].Percent = 100 * float64(slices[i].Amount.Cents) / float64(totalExpense)
		}
		slices[i].CumulativeBefore = cumulative
		cumulative += slices[i].Percent
	}

	return Distribution{
		TotalExpense: core.Money{Cents: totalExpense},
		Slices:       slices,
	}
}
