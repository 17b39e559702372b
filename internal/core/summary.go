package core

import "github.com/shopspring/decimal"

// Summary holds the wallet-level totals shown on the resumen view.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
}

// Summarize accumulates full transaction amounts per kind.
func Summarize(transactions []Transaction) Summary {
	s := Summary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Savings:  decimal.Zero,
	}
	for _, t := range transactions {
		switch t.Kind {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		case Saving:
			s.Savings = s.Savings.Add(t.Amount)
		}
	}
	return s
}

// Balance is income net of expenses and savings.
func (s Summary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expenses).Sub(s.Savings)
}
