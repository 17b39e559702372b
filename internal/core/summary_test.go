package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Kind: Income, Amount: decimal.NewFromInt(800000)},
		{Kind: Income, Amount: decimal.NewFromInt(200000)},
		{Kind: Expense, Amount: decimal.NewFromInt(350000)},
		{Kind: Saving, Amount: decimal.NewFromInt(100000)},
	}

	s := Summarize(txs)
	if !s.Income.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("income = %s", s.Income)
	}
	if !s.Expenses.Equal(decimal.NewFromInt(350000)) {
		t.Fatalf("expenses = %s", s.Expenses)
	}
	if !s.Savings.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("savings = %s", s.Savings)
	}
	if !s.Balance().Equal(decimal.NewFromInt(550000)) {
		t.Fatalf("balance = %s", s.Balance())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Income.IsZero() || !s.Expenses.IsZero() || !s.Savings.IsZero() {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if !s.Balance().IsZero() {
		t.Fatalf("expected zero balance, got %s", s.Balance())
	}
}
