package ledger

import (
	"fmt"

	"budgetvs/internal/core"
)

// Plan maps a category to its planned (budgeted) amount.
type Plan struct {
	amounts map[string]float64
	order   []string
}

func NewPlan() *Plan {
	return &Plan{amounts: make(map[string]float64)}
}

// SetBudget records the planned amount for a category, replacing any
// previous value.
func (p *Plan) SetBudget(category string, amount float64) error {
	category, err := ValidateBudget(category, amount)
	if err != nil {
		return err
	}
	if _, ok := p.amounts[category]; !ok {
		p.order = append(p.order, category)
	}
	p.amounts[category] = amount
	return nil
}

// Budget returns the planned amount and whether one was set.
func (p *Plan) Budget(category string) (float64, bool) {
	v, ok := p.amounts[category]
	return v, ok
}

// Categories returns planned categories in the order they were first set.
func (p *Plan) Categories() []string {
	return append([]string(nil), p.order...)
}

// ValidateBudget checks a planned amount and returns the trimmed category.
func ValidateBudget(category string, amount float64) (string, error) {
	category, err := core.NormalizeCategory(category)
	if err != nil {
		return "", err
	}
	if !core.IsNumber(amount) || amount < 0 {
		return "", fmt.Errorf("%w: budgeted amount for %q must be a non-negative number", core.ErrInvalidAmount, category)
	}
	return category, nil
}
