package report

import "zenfin/internal/core"

// trendWindow is the number of months in the rolling trend, reference month
// included.
const trendWindow = 6

// minTrendScaleCents keeps chart scaling away from division by zero:
// 100 monetary units.
const minTrendScaleCents = 10000

// TrendPoint is one month of the rolling series.
type TrendPoint struct {
	Month   Month
	Label   string
	Income  core.Money
	Expense core.Money
	Current bool // the reference month
	HasData bool // month had at least one transaction
}

// Trend is the finite six-month series ending at the reference month,
// ordered oldest to newest.
type Trend struct {
	Points []TrendPoint
}

// TrendSeries builds the six-point rolling window ending at ref. The series
// always has exactly six points regardless of transaction volume; months with
// no transactions appear with zero totals and HasData false.
func TrendSeries(txs []core.Transaction, ref Month) Trend {
	points := make([]TrendPoint, 0, trendWindow)
	for i := trendWindow - 1; i >= 0; i-- {
		m := ref.AddMonths(-i)
		subset := FilterMonth(txs, m)
		s := Summarize(subset)
		points = append(points, TrendPoint{
			Month:   m,
			Label:   m.Label(),
			Income:  s.Income,
			Expense: s.Expense,
			Current: i == 0,
			HasData: len(subset) > 0,
		})
	}
	return Trend{Points: points}
}

// MaxCents returns the largest income or expense across all points, floored
// at 100 monetary units. Renderers divide by this to scale bars.
func (t Trend) MaxCents() int64 {
	max := int64(minTrendScaleCents)
	for _, p := range t.Points {
		if p.Income.Cents > max {
			max = p.Income.Cents
		}
		if p.Expense.Cents > max {
			max = p.Expense.Cents
		}
	}
	return max
}
