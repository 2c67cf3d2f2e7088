package ledger

import (
	"sync"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/core"
)

// Workspace bundles the collections owned by one session. Every method
// takes the workspace lock; the collections themselves are never shared.
type Workspace struct {
	mu       sync.Mutex
	registry *Registry
	ledger   *Ledger
	plan     *Plan
	version  uint64
}

func NewWorkspace() *Workspace {
	return &Workspace{
		registry: NewRegistry(),
		ledger:   NewLedger(),
		plan:     NewPlan(),
	}
}

func (w *Workspace) AddCategory(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.registry.AddCategory(name); err != nil {
		return err
	}
	w.version++
	return nil
}

func (w *Workspace) ResetCategories() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.Reset()
	w.version++
}

func (w *Workspace) Categories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.Categories()
}

func (w *Workspace) SetBudget(category string, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.plan.SetBudget(category, amount); err != nil {
		return err
	}
	w.version++
	return nil
}

func (w *Workspace) LogExpense(category string, amount float64, date core.Date) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ledger.LogExpense(category, amount, date); err != nil {
		return err
	}
	w.version++
	return nil
}

func (w *Workspace) Expenses() []core.ExpenseRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Records()
}

func (w *Workspace) Series(category string) []core.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Series(category)
}

// Version increases on every successful write.
func (w *Workspace) Version() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Entries joins planned amounts with ledger sums into budget entries:
// registered categories first, then plan-only ones, then categories that
// only appear in the ledger.
func (w *Workspace) Entries() []aggregate.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return JoinEntries(w.registry.Categories(), w.plan, w.ledger)
}

// JoinEntries builds the entries for in-memory collections.
func JoinEntries(registered []string, plan *Plan, l *Ledger) []aggregate.Entry {
	sums, spent := l.Totals()
	return Join{
		Registered: registered,
		Planned:    plan.Categories(),
		Spent:      spent,
		Budgets:    plan.amounts,
		Sums:       sums,
	}.Entries()
}

// Join describes the three category sources of a workspace and their
// amounts, in the order each source lists them.
type Join struct {
	Registered []string
	Planned    []string
	Spent      []string
	Budgets    map[string]float64
	Sums       map[string]float64
}

// Entries returns one entry per distinct category: registered first, then
// planned-only, then spent-only. Missing budgets and spending are zero.
func (j Join) Entries() []aggregate.Entry {
	seen := make(map[string]struct{})
	var order []string
	for _, names := range [][]string{j.Registered, j.Planned, j.Spent} {
		for _, n := range names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			order = append(order, n)
		}
	}

	entries := make([]aggregate.Entry, 0, len(order))
	for _, name := range order {
		entries = append(entries, aggregate.NewEntry(name, j.Budgets[name], j.Sums[name]))
	}
	return entries
}
