// Package ledger implements the installment amortization and credit
// engine: calendar-month bucketing, installment projection, the per-card
// payment matrix, and credit availability. Every function here is a pure
// computation over snapshots owned by the caller; the package holds no
// state and performs no I/O.
package ledger

import (
	"fmt"
	"time"
)

// Month identifies one calendar month in a projection window. Key is the
// canonical YYYY-MM form; Label is display-only and excluded from any
// comparison.
type Month struct {
	Key   string
	Label string
}

// DefaultWindowMonths is the number of months projected after the
// reference month (current month + 6).
const DefaultWindowMonths = 6

// Spanish short month names, es-CL style.
var shortMonths = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// MonthKey returns the canonical YYYY-MM key for a date. Keys compare
// chronologically under plain string ordering because the month is
// zero-padded.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthWindow enumerates count+1 consecutive months starting at the
// reference date's month. Month overflow rolls into the following year.
// A negative count yields the reference month only.
func MonthWindow(ref time.Time, count int) []Month {
	if count < 0 {
		count = 0
	}
	months := make([]Month, 0, count+1)
	for i := 0; i <= count; i++ {
		d := time.Date(ref.Year(), ref.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		months = append(months, Month{
			Key:   MonthKey(d),
			Label: monthLabel(d),
		})
	}
	return months
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s %02d", shortMonths[int(t.Month())-1], t.Year()%100)
}
