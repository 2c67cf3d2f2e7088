package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"budgetvs/internal/core"
)

func TestLedgerLogExpense(t *testing.T) {
	l := NewLedger()
	day := core.NewDate(2024, 5, 1)

	cases := []struct {
		category string
		amount   float64
		date     core.Date
	}{
		{"Groceries", 50.0, day},
		{"Groceries", 50.0, day}, // separate purchase, same day
		{"Rent", 0, day},
		{"", 1, day},
		{"Utilities", 12.5, core.Date{Time: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)}},
	}
	for i, tc := range cases {
		if err := l.LogExpense(tc.category, tc.amount, tc.date); err != nil {
			t.Fatalf("case %d unexpected error: %v", i, err)
		}
		if l.Len() != i+1 {
			t.Fatalf("case %d: expected length %d, got %d", i, i+1, l.Len())
		}
	}
}

func TestLedgerRejectsInvalid(t *testing.T) {
	l := NewLedger()
	day := core.NewDate(2024, 5, 1)

	bads := []struct {
		amount float64
		date   core.Date
	}{
		{-10, day},
		{math.NaN(), day},
		{math.Inf(1), day},
		{10, core.Date{}},
	}
	for i, tc := range bads {
		err := l.LogExpense("Groceries", tc.amount, tc.date)
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("case %d expected invalid input, got %v", i, err)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("ledger mutated by failed logs: %d records", l.Len())
	}
}

func TestLedgerNormalizesDate(t *testing.T) {
	l := NewLedger()
	loc := time.FixedZone("CET", 3600)
	if err := l.LogExpense("Rent", 10, core.Date{Time: time.Date(2024, 1, 1, 1, 0, 0, 0, loc)}); err != nil {
		t.Fatal(err)
	}
	got := l.Records()[0].Date
	if got.Location() != time.UTC || !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC-normalized date, got %v", got.Time)
	}
}

func TestLedgerTotalsAndSeries(t *testing.T) {
	l := NewLedger()
	_ = l.LogExpense("Food", 10, core.NewDate(2024, 1, 2))
	_ = l.LogExpense("Rent", 500, core.NewDate(2024, 1, 1))
	_ = l.LogExpense("Food", 5, core.NewDate(2024, 1, 1))
	_ = l.LogExpense(" food ", 1, core.NewDate(2024, 1, 3))

	sums, order := l.Totals()
	if len(order) != 3 || order[0] != "Food" || order[1] != "Rent" || order[2] != " food " {
		t.Fatalf("unexpected order: %q", order)
	}
	if sums["Food"] != 15 || sums["Rent"] != 500 {
		t.Fatalf("unexpected sums: %v", sums)
	}

	series := l.Series("FOOD")
	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}
	if series[0].Actual != 10 || series[1].Actual != 5 || series[2].Actual != 1 {
		t.Fatalf("series not in insertion order: %+v", series)
	}
}

func TestLedgerRecordsIsCopy(t *testing.T) {
	l := NewLedger()
	_ = l.LogExpense("Food", 10, core.NewDate(2024, 1, 2))
	recs := l.Records()
	recs[0].Amount = 999
	if l.Records()[0].Amount != 10 {
		t.Fatal("ledger exposed its backing slice")
	}
}
