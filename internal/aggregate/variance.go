package aggregate

import (
	"fmt"

	"budgetvs/internal/core"
)

// Variance returns the sum of Budgeted minus the sum of Actual over every
// entry whose category equals category exactly. No match is a valid
// zero-variance state and returns 0.
//
// Every entry is checked for its three fields before any filtering, so an
// incomplete entry for an unrelated category still fails the call. Amount
// values are only checked on matching entries.
func Variance(category string, entries []Entry) (float64, error) {
	if category == "" {
		return 0, fmt.Errorf("%w: category cannot be empty", core.ErrInvalidInput)
	}

	var budgeted, actual float64
	found := false
	for i, e := range entries {
		if !e.complete() {
			return 0, fmt.Errorf("%w: entry %d must contain Category, Budgeted and Actual", core.ErrMalformedEntry, i)
		}
		if *e.Category != category {
			continue
		}
		if !core.IsNumber(*e.Budgeted) {
			return 0, fmt.Errorf("%w: entry %d Budgeted value must be numeric", core.ErrMalformedEntry, i)
		}
		if !core.IsNumber(*e.Actual) {
			return 0, fmt.Errorf("%w: entry %d Actual value must be numeric", core.ErrMalformedEntry, i)
		}
		budgeted += *e.Budgeted
		actual += *e.Actual
		found = true
	}
	if !found {
		return 0, nil
	}
	return budgeted - actual, nil
}
