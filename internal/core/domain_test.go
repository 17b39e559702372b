package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        Expense,
		Account:     "Visa Principal",
		Description: "ok",
		Amount:      decimal.NewFromInt(1000),
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "refund", Account: "a", Description: "x", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Account: "a", Description: "x", Amount: decimal.NewFromInt(1)}, // zero date
		{Kind: Expense, Account: "a", Description: "", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Account: "", Description: "x", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Account: "a", Description: "x", Amount: decimal.Zero, Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Account: "a", Description: "x", Amount: decimal.NewFromInt(-5), Date: NewDate(2025, 1, 1)},
		{Kind: Expense, Account: "a", Description: "x", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1), Installments: -2},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEffectiveInstallments(t *testing.T) {
	cases := []struct {
		installments int
		want         int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{12, 12},
	}
	for i, tc := range cases {
		tx := Transaction{Installments: tc.installments}
		if got := tx.EffectiveInstallments(); got != tc.want {
			t.Fatalf("case %d: got %d, want %d", i, got, tc.want)
		}
	}
}

func TestEffectiveFirstPayment(t *testing.T) {
	purchase := NewDate(2025, 3, 14)
	first := NewDate(2025, 5, 1)

	tx := Transaction{Date: purchase}
	if got := tx.EffectiveFirstPayment(); !got.Equal(purchase.Time) {
		t.Fatalf("expected purchase date fallback, got %v", got)
	}

	tx.FirstPaymentDate = first
	if got := tx.EffectiveFirstPayment(); !got.Equal(first.Time) {
		t.Fatalf("expected explicit first payment date, got %v", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-07-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 7 || d.Day() != 9 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"", "2025-13-01", "09/07/2025", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "Visa Principal", Limit: decimal.NewFromInt(1000000)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: "", Limit: decimal.NewFromInt(1)}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Account{Name: "x", Limit: decimal.NewFromInt(-1)}).Validate(); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}
