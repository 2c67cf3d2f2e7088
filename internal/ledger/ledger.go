package ledger

import (
	"budgetvs/internal/core"
)

// Ledger is an append-only list of expense records. The category of a
// record does not have to be registered.
type Ledger struct {
	records []core.ExpenseRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// LogExpense validates and appends one record. Nothing is appended when
// validation fails.
func (l *Ledger) LogExpense(category string, amount float64, date core.Date) error {
	rec := core.ExpenseRecord{Category: category, Amount: amount, Date: date}
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.Date = rec.Date.Normalize()
	l.records = append(l.records, rec)
	return nil
}

// Records returns a copy of the ledger in insertion order.
func (l *Ledger) Records() []core.ExpenseRecord {
	return append([]core.ExpenseRecord(nil), l.records...)
}

func (l *Ledger) Len() int { return len(l.records) }

// Totals sums amounts per exact category. The returned order slice lists
// categories by first appearance.
func (l *Ledger) Totals() (sums map[string]float64, order []string) {
	sums = make(map[string]float64)
	for _, r := range l.records {
		if _, ok := sums[r.Category]; !ok {
			order = append(order, r.Category)
		}
		sums[r.Category] += r.Amount
	}
	return sums, order
}

// Series returns the (date, amount) observations for a category, matched
// trimmed and case-insensitively, in insertion order.
func (l *Ledger) Series(category string) []core.Point {
	var out []core.Point
	for _, r := range l.records {
		if core.SameCategory(r.Category, category) {
			out = append(out, core.Point{Date: r.Date, Actual: r.Amount})
		}
	}
	return out
}
