package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	// ExpenseRecord is one immutable ledger row.
	ExpenseRecord struct {
		Category string
		Amount   float64
		Date     Date
	}

	// Point is a raw (date, actual) observation for one category.
	Point struct {
		Date   Date
		Actual float64
	}

	// TrendPoint carries an observation and its trailing mean.
	TrendPoint struct {
		Date     Date
		Actual   float64
		Smoothed float64
	}

	Trend struct {
		Category string
		Points   []TrendPoint
	}

	// Sample is a row of a budget table that still carries its category,
	// used when the trend builder filters a larger pool itself.
	Sample struct {
		Category string
		Budgeted float64
		Actual   float64
		Date     Date
	}
)

// Error taxonomy. Specific errors wrap one of these, so callers should
// compare with errors.Is.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMalformedEntry = errors.New("malformed entry")
	ErrNotFound       = errors.New("not found")
	ErrInvalidAmount  = errors.New("invalid amount")
)

var (
	ErrEmptyCategory     = fmt.Errorf("%w: category name cannot be empty or whitespace", ErrInvalidInput)
	ErrDuplicateCategory = fmt.Errorf("%w: category already exists", ErrInvalidInput)
	ErrNegativeAmount    = fmt.Errorf("%w: amount must be non-negative", ErrInvalidInput)
	ErrNonFiniteAmount   = fmt.Errorf("%w: amount must be a real number", ErrInvalidInput)
	ErrInvalidDate       = fmt.Errorf("%w: date must be a valid calendar date", ErrInvalidInput)
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Normalize strips the monotonic clock reading and converts to UTC so
// that equal instants compare equal with ==.
func (d Date) Normalize() Date {
	return Date{Time: d.Time.Round(0).UTC()}
}

// String renders the calendar date, or a full timestamp when a
// time-of-day is present.
func (d Date) String() string {
	t := d.Time.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// NormalizeCategory trims the name and rejects blank input.
func NormalizeCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategory
	}
	return name, nil
}

// SameCategory reports whether two category names match the way lookups
// do: trimmed and case-folded.
func SameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsNumber reports whether v is a usable real number.
func IsNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (e ExpenseRecord) Validate() error {
	if !IsNumber(e.Amount) {
		return ErrNonFiniteAmount
	}
	if e.Amount < 0 {
		return ErrNegativeAmount
	}
	return e.Date.Validate()
}

func (p Point) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if !IsNumber(p.Actual) {
		return ErrNonFiniteAmount
	}
	return nil
}

// Empty reports whether there is nothing to plot.
func (t Trend) Empty() bool {
	return len(t.Points) == 0
}
