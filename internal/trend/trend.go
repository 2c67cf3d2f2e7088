// Package trend turns a category's (date, actual) observations into a
// date-ordered series with a trailing moving average.
package trend

import (
	"fmt"
	"sort"
	"strings"

	"budgetvs/internal/core"
)

// Window is the number of points averaged, current point included.
const Window = 3

// Build sorts series by date (stable, ties keep input order) and smooths
// it with a trailing mean over up to Window points. The window shrinks at
// the start of the series instead of padding. An empty series yields an
// empty trend.
func Build(category string, series []core.Point) (core.Trend, error) {
	for i, p := range series {
		if err := p.Validate(); err != nil {
			return core.Trend{}, fmt.Errorf("point %d: %w", i, err)
		}
	}

	sorted := append([]core.Point(nil), series...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	out := core.Trend{
		Category: strings.TrimSpace(category),
		Points:   make([]core.TrendPoint, len(sorted)),
	}
	for i, p := range sorted {
		lo := i - Window + 1
		if lo < 0 {
			lo = 0
		}
		var sum float64
		for _, q := range sorted[lo : i+1] {
			sum += q.Actual
		}
		out.Points[i] = core.TrendPoint{
			Date:     p.Date,
			Actual:   p.Actual,
			Smoothed: sum / float64(i+1-lo),
		}
	}
	return out, nil
}

// FromPool selects the rows of pool whose category matches, trimmed and
// case-insensitively, then builds their trend. A blank category selects
// nothing.
func FromPool(category string, pool []core.Sample) (core.Trend, error) {
	var series []core.Point
	if strings.TrimSpace(category) != "" {
		for _, s := range pool {
			if core.SameCategory(s.Category, category) {
				series = append(series, core.Point{Date: s.Date, Actual: s.Actual})
			}
		}
	}
	return Build(category, series)
}

// SampleData is the demonstration table shown before any data is logged.
func SampleData() []core.Sample {
	row := func(cat string, budgeted, actual float64, y, m, d int) core.Sample {
		return core.Sample{Category: cat, Budgeted: budgeted, Actual: actual, Date: core.NewDate(y, m, d)}
	}
	return []core.Sample{
		row("Groceries", 100, 90, 2023, 1, 1),
		row("Groceries", 100, 110, 2023, 1, 2),
		row("Groceries", 100, 95, 2023, 1, 3),
		row("Groceries", 100, 85, 2023, 1, 4),
		row("Groceries", 100, 100, 2023, 1, 5),
		row("Utilities", 50, 45, 2023, 2, 1),
		row("Utilities", 50, 55, 2023, 2, 8),
		row("Utilities", 50, 60, 2023, 2, 15),
		row("Rent", 1200, 1150, 2023, 3, 1),
		row("Entertainment", 200, 180, 2023, 3, 3),
	}
}
