// Package aggregate reduces caller-supplied budget entries into variance,
// percentage-spent and summary figures. Nothing here keeps state: every
// function reads only its arguments.
package aggregate

// Entry is one budgeted-vs-actual row supplied by the caller. Fields are
// pointers so that a row decoded with a missing key can be told apart from
// a zero value; NaN or infinite amounts stand for non-numeric values.
type Entry struct {
	Category *string  `json:"Category"`
	Budgeted *float64 `json:"Budgeted"`
	Actual   *float64 `json:"Actual"`
}

// NewEntry builds a fully populated entry.
func NewEntry(category string, budgeted, actual float64) Entry {
	return Entry{Category: &category, Budgeted: &budgeted, Actual: &actual}
}

// complete reports whether all three fields are present.
func (e Entry) complete() bool {
	return e.Category != nil && e.Budgeted != nil && e.Actual != nil
}

func (e Entry) is(category string) bool {
	return e.Category != nil && *e.Category == category
}
