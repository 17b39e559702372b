package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
)

// installmentMonths returns the month keys the transaction's installments
// fall due in: n consecutive months starting at the first payment date's
// month, day-of-month discarded. The keys are pairwise distinct by
// construction.
func installmentMonths(t core.Transaction) []string {
	first := t.EffectiveFirstPayment()
	n := t.EffectiveInstallments()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		due := time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		keys = append(keys, MonthKey(due))
	}
	return keys
}

// installmentAmount is the equal monthly slice: amount / n, computed once
// per transaction. Decimal division at the library's default precision;
// no remainder correction, matching the source behavior.
func installmentAmount(t core.Transaction) decimal.Decimal {
	return t.Amount.Div(decimal.NewFromInt(int64(t.EffectiveInstallments())))
}

// Contribution returns the amount the transaction owes in the queried
// month for the given account: the per-installment slice when one of its
// installments falls due in that month, zero otherwise. Only expense
// transactions on the named account are eligible; a transaction
// contributes to at most one month per query.
func Contribution(t core.Transaction, account, monthKey string) decimal.Decimal {
	if t.Kind != core.Expense || t.Account != account {
		return decimal.Zero
	}
	for _, due := range installmentMonths(t) {
		if due == monthKey {
			return installmentAmount(t)
		}
	}
	return decimal.Zero
}
