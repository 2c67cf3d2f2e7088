package aggregate

import (
	"fmt"

	"budgetvs/internal/core"
)

// PercentageSpent returns Actual/Budgeted*100 for the first entry whose
// category equals category exactly. Later matches are ignored.
//
// A zero budget yields 0 regardless of Actual. The result is unbounded and
// negative when Actual is negative (refunds).
func PercentageSpent(category string, entries []Entry) (float64, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: budget data is empty", core.ErrNotFound)
	}

	for _, e := range entries {
		if !e.is(category) {
			continue
		}
		if e.Budgeted == nil || !core.IsNumber(*e.Budgeted) {
			return 0, fmt.Errorf("%w: budgeted amount for %q must be numeric", core.ErrInvalidAmount, category)
		}
		if e.Actual == nil || !core.IsNumber(*e.Actual) {
			return 0, fmt.Errorf("%w: actual amount for %q must be numeric", core.ErrInvalidAmount, category)
		}
		budgeted, actual := *e.Budgeted, *e.Actual
		if budgeted < 0 {
			return 0, fmt.Errorf("%w: budgeted amount for %q cannot be negative", core.ErrInvalidAmount, category)
		}
		if budgeted == 0 {
			return 0, nil
		}
		return actual / budgeted * 100, nil
	}

	return 0, fmt.Errorf("%w: category %q not found in budget data", core.ErrNotFound, category)
}
