package ledger

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
)

var matrixRef = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func visaAccount(limit int64) core.Account {
	return core.Account{ID: "a1", Name: "Visa", Limit: decimal.NewFromInt(limit)}
}

// Scenario: one purchase of 300 in 3 installments starting at the
// reference month projects 100 into each of the first three cells.
func TestBuildMatrixInstallmentProjection(t *testing.T) {
	accounts := []core.Account{visaAccount(100)}
	txs := []core.Transaction{expenseTx("Visa", 300, 3, core.NewDate(2025, 9, 5))}

	m := BuildMatrix(txs, accounts, NewOverlay(), AllAccounts, matrixRef, DefaultWindowMonths)

	if len(m.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(m.Rows))
	}
	cells := m.Rows[0].Cells
	if len(cells) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(cells))
	}
	for i, cell := range cells {
		want := decimal.Zero
		if i < 3 {
			want = decimal.NewFromInt(100)
		}
		if !cell.Amount.Equal(want) {
			t.Errorf("cell %d amount = %s, want %s", i, cell.Amount, want)
		}
		if !m.Totals[i].Equal(want) {
			t.Errorf("total %d = %s, want %s", i, m.Totals[i], want)
		}
	}
}

func TestBuildMatrixAccountFilter(t *testing.T) {
	accounts := []core.Account{visaAccount(100), {ID: "a2", Name: "Mastercard", Limit: decimal.NewFromInt(500)}}
	txs := []core.Transaction{
		expenseTx("Visa", 100, 1, core.NewDate(2025, 9, 1)),
		expenseTx("Mastercard", 50, 1, core.NewDate(2025, 9, 1)),
	}

	all := BuildMatrix(txs, accounts, NewOverlay(), AllAccounts, matrixRef, DefaultWindowMonths)
	if len(all.Rows) != 2 {
		t.Fatalf("all: expected 2 rows, got %d", len(all.Rows))
	}
	if !all.Totals[0].Equal(decimal.NewFromInt(150)) {
		t.Fatalf("all: first month total = %s, want 150", all.Totals[0])
	}

	one := BuildMatrix(txs, accounts, NewOverlay(), "Visa", matrixRef, DefaultWindowMonths)
	if len(one.Rows) != 1 || one.Rows[0].Account != "Visa" {
		t.Fatalf("filter: unexpected rows %+v", one.Rows)
	}
	if !one.Totals[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("filter: first month total = %s, want 100", one.Totals[0])
	}

	none := BuildMatrix(txs, accounts, NewOverlay(), "Amex", matrixRef, DefaultWindowMonths)
	if len(none.Rows) != 0 {
		t.Fatalf("unknown filter: expected no rows, got %d", len(none.Rows))
	}
}

// An account with no transactions in the window: all cells zero and no
// month reports fully paid.
func TestBuildMatrixNoDebt(t *testing.T) {
	accounts := []core.Account{visaAccount(100)}

	m := BuildMatrix(nil, accounts, NewOverlay(), AllAccounts, matrixRef, DefaultWindowMonths)
	for i, cell := range m.Rows[0].Cells {
		if !cell.Amount.IsZero() {
			t.Errorf("cell %d amount = %s, want 0", i, cell.Amount)
		}
		if m.FullyPaid[i] {
			t.Errorf("month %d fully paid without debt", i)
		}
	}
}

// Two accounts owe in the same month: fully paid only once both cells
// are marked.
func TestBuildMatrixFullyPaidAggregate(t *testing.T) {
	accounts := []core.Account{visaAccount(100), {ID: "a2", Name: "Mastercard", Limit: decimal.NewFromInt(500)}}
	txs := []core.Transaction{
		expenseTx("Visa", 100, 1, core.NewDate(2025, 9, 1)),
		expenseTx("Mastercard", 50, 1, core.NewDate(2025, 9, 1)),
	}

	overlay := NewOverlay()
	overlay.Mark("Visa", "2025-09")

	m := BuildMatrix(txs, accounts, overlay, AllAccounts, matrixRef, DefaultWindowMonths)
	if m.FullyPaid[0] {
		t.Fatalf("one unpaid cell must block the aggregate flag")
	}

	overlay.Mark("Mastercard", "2025-09")
	m = BuildMatrix(txs, accounts, overlay, AllAccounts, matrixRef, DefaultWindowMonths)
	if !m.FullyPaid[0] {
		t.Fatalf("both cells paid: aggregate flag should flip")
	}
}

// Overlay marks on zero-amount cells are tolerated, shown, and never
// make a debt-free month fully paid.
func TestBuildMatrixStaleOverlayMark(t *testing.T) {
	accounts := []core.Account{visaAccount(100)}
	overlay := NewOverlay()
	overlay.Mark("Visa", "2025-10")

	m := BuildMatrix(nil, accounts, overlay, AllAccounts, matrixRef, DefaultWindowMonths)
	cell := m.Rows[0].Cells[1]
	if !cell.Amount.IsZero() || !cell.Paid {
		t.Fatalf("expected zero-amount paid cell, got %+v", cell)
	}
	if m.FullyPaid[1] {
		t.Fatalf("stale mark must not report the month fully paid")
	}
}

func TestBuildMatrixDeterministic(t *testing.T) {
	accounts := []core.Account{visaAccount(100)}
	txs := []core.Transaction{expenseTx("Visa", 300, 3, core.NewDate(2025, 9, 5))}
	overlay := NewOverlay()
	overlay.Mark("Visa", "2025-09")

	a := BuildMatrix(txs, accounts, overlay, AllAccounts, matrixRef, DefaultWindowMonths)
	b := BuildMatrix(txs, accounts, overlay, AllAccounts, matrixRef, DefaultWindowMonths)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different matrices")
	}
}
