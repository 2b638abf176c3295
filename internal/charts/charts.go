// Package charts renders the monthly report views as PNG images for clients
// that want a picture instead of JSON.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"zenfin/internal/report"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// TrendPNG renders the six month income/expense history as grouped bars.
// Returns nil bytes when no month in the window has data.
func (r *Renderer) TrendPNG(t report.Trend) ([]byte, error) {
	hasData := false
	for _, p := range t.Points {
		if p.HasData {
			hasData = true
			break
		}
	}
	if !hasData {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(t.Points)*2)
	for _, p := range t.Points {
		incomeFill := chart.ColorGreen.WithAlpha(100)
		expenseFill := chart.ColorRed.WithAlpha(100)
		if p.Current {
			incomeFill = chart.ColorGreen
			expenseFill = chart.ColorRed
		}
		bars = append(bars,
			chart.Value{
				Label: p.Label,
				Value: p.Income.Reais(),
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					FillColor:   incomeFill,
				},
			},
			chart.Value{
				Label: " ",
				Value: p.Expense.Reais(),
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					FillColor:   expenseFill,
				},
			},
		)
	}

	graph := chart.BarChart{
		Width:    1200,
		Height:   600,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(t.MaxCents()) / 100,
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DistributionPNG renders the expense breakdown as a donut. Returns nil bytes
// when the month has no expenses.
func (r *Renderer) DistributionPNG(d report.Distribution) ([]byte, error) {
	if !d.HasData() {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(d.Slices))
	for _, s := range d.Slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f (%.1f%%)", s.Category, s.Amount.Reais(), s.Percent),
			Value: float64(s.Amount.Cents),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	donut := chart.DonutChart{
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := donut.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render distribution chart: %w", err)
	}
	return buffer.Bytes(), nil
}
