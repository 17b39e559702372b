package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
	Saving  TransactionKind = "saving"
)

type (
	TransactionKind string

	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. Amount is always the full
	// purchase price; when Installments > 1 the credit engine splits it
	// into equal monthly slices starting at FirstPaymentDate.
	Transaction struct {
		ID               string
		Kind             TransactionKind
		Account          string // free text; joins to Account.Name by equality
		Description      string
		Category         string
		Amount           decimal.Decimal
		Date             Date
		Installments     int  // <= 0 means single payment
		FirstPaymentDate Date // zero means Date
	}

	// Account is a credit card with a spending ceiling.
	Account struct {
		ID    string
		Name  string
		Limit decimal.Decimal
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidInstallments = errors.New("invalid installment count")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyAccount        = errors.New("empty account name")
)

// NewDate creates a day-resolution Date in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date at day resolution.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether the date was never set (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (k TransactionKind) Validate() error {
	switch k {
	case Income, Expense, Saving:
		return nil
	}
	return ErrInvalidKind
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if t.Amount.IsNegative() || t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if t.Installments < 0 {
		return ErrInvalidInstallments
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccount
	}
	if a.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// EffectiveInstallments floors the installment count to 1, matching the
// single-payment default for absent or non-positive values.
func (t Transaction) EffectiveInstallments() int {
	if t.Installments > 0 {
		return t.Installments
	}
	return 1
}

// EffectiveFirstPayment falls back to the purchase date when no first
// payment date was recorded.
func (t Transaction) EffectiveFirstPayment() Date {
	if !t.FirstPaymentDate.IsZero() {
		return t.FirstPaymentDate
	}
	return t.Date
}
