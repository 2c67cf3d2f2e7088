// Package ledger holds the mutable per-session collections: the category
// registry, the append-only expense ledger and the planned amounts.
//
// None of the types lock internally. A Workspace serializes access for the
// session that owns it.
package ledger

import (
	"fmt"

	"budgetvs/internal/core"
)

// Registry is a set of unique, trimmed category names. Names are compared
// exactly, so "Rent" and "rent" are distinct entries.
type Registry struct {
	names []string
	index map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]struct{})}
}

// AddCategory stores the trimmed name. Blank names and names already present
// fail with core.ErrInvalidInput and leave the registry unchanged.
func (r *Registry) AddCategory(name string) error {
	name, err := core.NormalizeCategory(name)
	if err != nil {
		return err
	}
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%w: %q", core.ErrDuplicateCategory, name)
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
	return nil
}

// Has reports whether the trimmed name is registered.
func (r *Registry) Has(name string) bool {
	name, err := core.NormalizeCategory(name)
	if err != nil {
		return false
	}
	_, ok := r.index[name]
	return ok
}

// Categories returns the names in registration order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int { return len(r.names) }

// Reset empties the registry.
func (r *Registry) Reset() {
	r.names = nil
	r.index = make(map[string]struct{})
}
