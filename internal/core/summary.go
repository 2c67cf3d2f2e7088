package core

// CategorySummary is one row of the budget-vs-actual table.
type CategorySummary struct {
	Category        string
	Budgeted        float64
	Actual          float64
	Variance        float64
	PercentageSpent float64
	Overspent       bool
	Note            string // set when the percentage could not be computed
}

// Totals aggregates every summary row.
type Totals struct {
	Budgeted        float64
	Actual          float64
	Variance        float64
	PercentageSpent float64
}
