package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
)

// AllAccounts is the filter sentinel selecting every account.
const AllAccounts = "all"

// Cell is one (account, month) slot of the payment matrix.
type Cell struct {
	Amount   decimal.Decimal
	Paid     bool
	Account  string
	MonthKey string
}

// Row is one account's projection across the month window.
type Row struct {
	Account string
	Cells   []Cell
}

// Matrix is the full account-by-month projection. Totals and FullyPaid
// are aligned index-for-index with Months.
type Matrix struct {
	Months    []Month
	Rows      []Row
	Totals    []decimal.Decimal
	FullyPaid []bool
}

// BuildMatrix projects every transaction onto a window of windowMonths+1
// months starting at the reference date's month, one row per account.
// filter is an exact account name or AllAccounts. Cell paid flags come
// straight from the overlay and are independent of the computed amounts.
//
// The result is fully derived: identical inputs produce identical output.
func BuildMatrix(transactions []core.Transaction, accounts []core.Account, overlay Overlay, filter string, ref time.Time, windowMonths int) Matrix {
	months := MonthWindow(ref, windowMonths)

	selected := accounts
	if filter != AllAccounts {
		selected = nil
		for _, a := range accounts {
			if a.Name == filter {
				selected = append(selected, a)
			}
		}
	}

	rows := make([]Row, 0, len(selected))
	for _, account := range selected {
		cells := make([]Cell, 0, len(months))
		for _, month := range months {
			total := decimal.Zero
			for _, t := range transactions {
				total = total.Add(Contribution(t, account.Name, month.Key))
			}
			cells = append(cells, Cell{
				Amount:   total,
				Paid:     overlay.Paid(account.Name, month.Key),
				Account:  account.Name,
				MonthKey: month.Key,
			})
		}
		rows = append(rows, Row{Account: account.Name, Cells: cells})
	}

	totals := make([]decimal.Decimal, len(months))
	fullyPaid := make([]bool, len(months))
	for i := range months {
		sum := decimal.Zero
		withDebt := 0
		paid := 0
		for _, row := range rows {
			cell := row.Cells[i]
			sum = sum.Add(cell.Amount)
			if cell.Amount.IsPositive() {
				withDebt++
				if cell.Paid {
					paid++
				}
			}
		}
		totals[i] = sum
		// A month with no debt anywhere is never reported fully paid.
		fullyPaid[i] = withDebt > 0 && paid == withDebt
	}

	return Matrix{Months: months, Rows: rows, Totals: totals, FullyPaid: fullyPaid}
}
