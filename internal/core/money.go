// Package core provides the domain model shared by the web server, the
// credit engine, and the sync worker.
//
// This file contains amount parsing and display formatting. Amounts are
// decimal values (github.com/shopspring/decimal); formatting follows the
// Chilean-peso convention the application displays (no decimals, dot as
// thousands separator).
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount string into a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects signs, empty input, and non-positive values.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsZero() || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatCLP renders an amount as Chilean pesos: "$1.234.567". Fractional
// parts (possible after installment division) are rounded to the peso for
// display only; stored values keep full precision.
func FormatCLP(d decimal.Decimal) string {
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	whole := d.Round(0).String()
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
