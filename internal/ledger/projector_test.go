package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
)

func expenseTx(account string, amount int64, installments int, date core.Date) core.Transaction {
	return core.Transaction{
		ID:           "t1",
		Kind:         core.Expense,
		Account:      account,
		Description:  "compra",
		Amount:       decimal.NewFromInt(amount),
		Date:         date,
		Installments: installments,
	}
}

func TestContributionSinglePayment(t *testing.T) {
	// installmentCount absent: exactly one month receives the full amount.
	tx := expenseTx("Visa", 45000, 0, core.NewDate(2025, 9, 14))

	if got := Contribution(tx, "Visa", "2025-09"); !got.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("due month contribution = %s, want 45000", got)
	}
	for _, month := range []string{"2025-08", "2025-10", "2026-09"} {
		if got := Contribution(tx, "Visa", month); !got.IsZero() {
			t.Fatalf("month %s contribution = %s, want 0", month, got)
		}
	}
}

func TestContributionInstallmentSplit(t *testing.T) {
	tx := expenseTx("Visa", 300, 3, core.NewDate(2025, 9, 1))
	slice := decimal.NewFromInt(100)

	for _, month := range []string{"2025-09", "2025-10", "2025-11"} {
		if got := Contribution(tx, "Visa", month); !got.Equal(slice) {
			t.Fatalf("month %s contribution = %s, want %s", month, got, slice)
		}
	}
	if got := Contribution(tx, "Visa", "2025-12"); !got.IsZero() {
		t.Fatalf("month after last installment contributed %s", got)
	}
}

func TestContributionEligibility(t *testing.T) {
	date := core.NewDate(2025, 9, 1)
	income := core.Transaction{Kind: core.Income, Account: "Visa", Amount: decimal.NewFromInt(100), Date: date}
	saving := core.Transaction{Kind: core.Saving, Account: "Visa", Amount: decimal.NewFromInt(100), Date: date}
	otherCard := expenseTx("Mastercard", 100, 1, date)

	for i, tx := range []core.Transaction{income, saving, otherCard} {
		if got := Contribution(tx, "Visa", "2025-09"); !got.IsZero() {
			t.Fatalf("case %d: ineligible transaction contributed %s", i, got)
		}
	}
}

func TestContributionFirstPaymentDate(t *testing.T) {
	// Purchase in September, first payment deferred to November.
	tx := expenseTx("Visa", 200, 2, core.NewDate(2025, 9, 20))
	tx.FirstPaymentDate = core.NewDate(2025, 11, 5)

	if got := Contribution(tx, "Visa", "2025-09"); !got.IsZero() {
		t.Fatalf("purchase month contributed %s despite deferral", got)
	}
	for _, month := range []string{"2025-11", "2025-12"} {
		if got := Contribution(tx, "Visa", month); !got.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("month %s contribution = %s, want 100", month, got)
		}
	}
}

func TestContributionDayOfMonthDiscarded(t *testing.T) {
	// Installments from the 31st must still land in consecutive months
	// (normalizing to day 1 avoids end-of-month overflow).
	tx := expenseTx("Visa", 300, 3, core.NewDate(2025, 1, 31))

	for _, month := range []string{"2025-01", "2025-02", "2025-03"} {
		if got := Contribution(tx, "Visa", month); !got.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("month %s contribution = %s, want 100", month, got)
		}
	}
}

func TestContributionYearRollover(t *testing.T) {
	tx := expenseTx("Visa", 1200, 12, core.NewDate(2025, 11, 10))

	if got := Contribution(tx, "Visa", "2026-10"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("last installment contribution = %s, want 100", got)
	}
	if got := Contribution(tx, "Visa", "2026-11"); !got.IsZero() {
		t.Fatalf("month past schedule contributed %s", got)
	}
}

func TestInstallmentMonthsMutuallyExclusive(t *testing.T) {
	tx := expenseTx("Visa", 700, 7, core.NewDate(2025, 10, 3))
	seen := map[string]bool{}
	for _, month := range installmentMonths(tx) {
		if seen[month] {
			t.Fatalf("duplicate installment month %s", month)
		}
		seen[month] = true
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct months, got %d", len(seen))
	}
}

func TestInstallmentAmountUnevenSplit(t *testing.T) {
	// 100 / 3: decimal division, no remainder correction.
	tx := expenseTx("Visa", 100, 3, core.NewDate(2025, 9, 1))
	slice := installmentAmount(tx)

	want, _ := decimal.NewFromString("33.33333333333333333333")
	if !slice.Sub(want).Abs().LessThan(decimal.NewFromFloat(0.0001)) {
		t.Fatalf("slice = %s, want ~33.3333", slice)
	}
	// The three slices are identical; any drift from the total is
	// systematic, not re-accumulated.
	for _, month := range installmentMonths(tx) {
		if got := Contribution(tx, "Visa", month); !got.Equal(slice) {
			t.Fatalf("month %s slice %s differs from %s", month, got, slice)
		}
	}
}
