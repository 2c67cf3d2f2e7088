package aggregate

import (
	"errors"

	"budgetvs/internal/core"
)

// Summarize builds one row per distinct category, in first-seen order, from
// Variance and PercentageSpent. Budgeted and Actual on a row are the sums
// across matching entries, the same figures Variance reduces.
//
// A percentage that cannot be computed because of an invalid amount leaves
// the row's PercentageSpent at 0 and sets Note; any other error aborts.
func Summarize(entries []Entry) ([]core.CategorySummary, error) {
	var order []string
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.Category == nil {
			continue
		}
		if _, ok := seen[*e.Category]; ok {
			continue
		}
		seen[*e.Category] = struct{}{}
		order = append(order, *e.Category)
	}

	rows := make([]core.CategorySummary, 0, len(order))
	for _, name := range order {
		if name == "" {
			continue
		}
		variance, err := Variance(name, entries)
		if err != nil {
			return nil, err
		}
		row := core.CategorySummary{Category: name, Variance: variance}
		for _, e := range entries {
			if e.is(name) {
				row.Budgeted += *e.Budgeted
				row.Actual += *e.Actual
			}
		}
		pct, err := PercentageSpent(name, entries)
		switch {
		case err == nil:
			row.PercentageSpent = pct
		case errors.Is(err, core.ErrInvalidAmount):
			row.Note = err.Error()
		default:
			return nil, err
		}
		row.Overspent = variance < 0
		rows = append(rows, row)
	}
	return rows, nil
}

// Totals sums the rows. The overall percentage follows the same zero-budget
// convention as PercentageSpent.
func Totals(rows []core.CategorySummary) core.Totals {
	var t core.Totals
	for _, r := range rows {
		t.Budgeted += r.Budgeted
		t.Actual += r.Actual
	}
	t.Variance = t.Budgeted - t.Actual
	if t.Budgeted > 0 {
		t.PercentageSpent = t.Actual / t.Budgeted * 100
	}
	return t
}
