package sheets

import (
	"context"

	"budgetvs/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror copies logged expenses into an external spreadsheet.
	// It is write-only: the API never reads budget data back from it.
	ExpenseMirror interface {
		AppendExpense(ctx context.Context, sessionID string, rec core.ExpenseRecord) (rowRef string, err error)
	}
)

// Header is the column layout every mirror writes.
var Header = []string{"Date", "Category", "Amount", "Session"}

// Row renders one expense in Header order. Amounts are rounded to cents.
func Row(sessionID string, rec core.ExpenseRecord) []string {
	return []string{rec.Date.String(), rec.Category, core.FormatAmount(rec.Amount), sessionID}
}
