// Package core provides amount parsing and formatting utilities.
//
// This file contains functions for parsing user-entered amounts from strings
// and rounding them for display.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is a
// valid amount; negative values and anything that is not a plain decimal
// number are rejected with ErrInvalidInput.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-1")    -> 0, error
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}
	if strings.Count(s, ",") > 1 || (strings.Contains(s, ",") && strings.Contains(s, ".")) {
		return 0, fmt.Errorf("%w: ambiguous decimal separator in %q", ErrInvalidInput, s)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("%w: exponent notation not accepted: %q", ErrInvalidInput, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// FormatAmount rounds half away from zero to two decimals for display.
func FormatAmount(v float64) string {
	if !IsNumber(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPercent renders a percentage with two decimals and a % suffix.
func FormatPercent(v float64) string {
	return FormatAmount(v) + "%"
}
