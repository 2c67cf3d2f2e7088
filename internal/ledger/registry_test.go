package ledger

import (
	"errors"
	"strings"
	"testing"

	"budgetvs/internal/core"
)

func TestRegistryAddCategory(t *testing.T) {
	valid := []string{
		"Groceries",
		"Travel & Leisure",
		strings.Repeat("LongCategoryName", 50),
		"123",
		"Budget_Category_1",
		"Café",
		"\nNewline",
		"Tab\tCategory",
	}
	r := NewRegistry()
	for _, name := range valid {
		if err := r.AddCategory(name); err != nil {
			t.Fatalf("AddCategory(%q) unexpected error: %v", name, err)
		}
	}
	if r.Len() != len(valid) {
		t.Fatalf("expected %d categories, got %d", len(valid), r.Len())
	}
	if !r.Has("Newline") {
		t.Fatal("expected trimmed name to be stored")
	}
}

func TestRegistryRejectsBlank(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"", "  ", "    ", "\t\n"} {
		err := r.AddCategory(name)
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("AddCategory(%q) expected invalid input, got %v", name, err)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("registry mutated by failed adds: %v", r.Categories())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.AddCategory("Health"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	for _, dup := range []string{"Health", "  Health  "} {
		err := r.AddCategory(dup)
		if !errors.Is(err, core.ErrDuplicateCategory) || !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("AddCategory(%q) expected duplicate error, got %v", dup, err)
		}
	}
	// Exact-case comparison: a different case is a different category.
	if err := r.AddCategory("health"); err != nil {
		t.Fatalf("expected case-distinct name to be accepted: %v", err)
	}
	if got := r.Categories(); len(got) != 2 || got[0] != "Health" || got[1] != "health" {
		t.Fatalf("unexpected categories: %v", got)
	}
}

func TestRegistryHasTrimsLikeAdd(t *testing.T) {
	r := NewRegistry()
	if err := r.AddCategory(" Rent "); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Rent", " Rent ", "\tRent\n"} {
		if !r.Has(name) {
			t.Errorf("Has(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"rent", "", "   "} {
		if r.Has(name) {
			t.Errorf("Has(%q) = true, want false", name)
		}
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	_ = r.AddCategory("Rent")
	r.Reset()
	if r.Len() != 0 || r.Has("Rent") {
		t.Fatal("expected empty registry after reset")
	}
	if err := r.AddCategory("Rent"); err != nil {
		t.Fatalf("expected re-add after reset to succeed: %v", err)
	}
}
