package ledger

import (
	"github.com/shopspring/decimal"

	"billetera/internal/core"
)

// CreditStatus is the derived credit position of one account.
type CreditStatus struct {
	TotalDebt          decimal.Decimal
	PaidAmount         decimal.Decimal
	Usage              decimal.Decimal
	Available          decimal.Decimal
	UtilizationPercent float64
}

// Credit computes an account's usage and remaining limit from every
// expense transaction on it, regardless of date, netted against the
// months acknowledged as paid in the overlay.
//
// Usage never goes negative even when overlay marks exceed the debt;
// Available may go negative when usage exceeds the limit. Utilization is
// clamped to 100 for display and reported as 0 for a zero limit.
func Credit(account core.Account, transactions []core.Transaction, overlay Overlay) CreditStatus {
	totalDebt := decimal.Zero
	paidAmount := decimal.Zero

	for _, t := range transactions {
		if t.Kind != core.Expense || t.Account != account.Name {
			continue
		}
		totalDebt = totalDebt.Add(t.Amount)

		slice := installmentAmount(t)
		for _, month := range installmentMonths(t) {
			if overlay.Paid(account.Name, month) {
				paidAmount = paidAmount.Add(slice)
			}
		}
	}

	usage := totalDebt.Sub(paidAmount)
	if usage.IsNegative() {
		usage = decimal.Zero
	}

	status := CreditStatus{
		TotalDebt:  totalDebt,
		PaidAmount: paidAmount,
		Usage:      usage,
		Available:  account.Limit.Sub(usage),
	}

	if account.Limit.IsPositive() {
		pct, _ := usage.Div(account.Limit).Mul(decimal.NewFromInt(100)).Float64()
		if pct > 100 {
			pct = 100
		}
		status.UtilizationPercent = pct
	}

	return status
}
