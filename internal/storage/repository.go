package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
	"billetera/internal/ledger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or was soft deleted.
var ErrNotFound = errors.New("storage: not found")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a new ledger entry pending sync.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	var firstPayment sql.NullString
	if !t.FirstPaymentDate.IsZero() {
		firstPayment = sql.NullString{String: t.FirstPaymentDate.Format(dateLayout), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, kind, account, description, category, amount, tx_date, installments, first_payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.Account, t.Description, t.Category,
		t.Amount.String(), t.Date.Format(dateLayout), t.EffectiveInstallments(), firstPayment)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"kind", t.Kind,
		"account", t.Account,
		"description", t.Description,
		"amount", t.Amount.String(),
		"installments", t.EffectiveInstallments())

	return nil
}

const transactionColumns = `id, kind, account, description, category, amount, tx_date, installments, first_payment_date`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t            core.Transaction
		kind         string
		amount       string
		txDate       string
		firstPayment sql.NullString
	)
	err := row.Scan(&t.ID, &kind, &t.Account, &t.Description, &t.Category, &amount, &txDate, &t.Installments, &firstPayment)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Kind = core.TransactionKind(kind)

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}

	t.Date, err = core.ParseDate(txDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", txDate, err)
	}

	if firstPayment.Valid {
		t.FirstPaymentDate, err = core.ParseDate(firstPayment.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse stored first payment date %q: %w", firstPayment.String, err)
		}
	}

	return t, nil
}

// ListTransactions returns all active entries, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY tx_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single active entry by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites the mutable fields of an entry and queues it
// for re-sync by bumping version and clearing the synced flag. The new
// version is returned so callers can publish a matching sync message.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var firstPayment sql.NullString
	if !t.FirstPaymentDate.IsZero() {
		firstPayment = sql.NullString{String: t.FirstPaymentDate.Format(dateLayout), Valid: true}
	}

	var version int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET kind = ?, account = ?, description = ?, category = ?, amount = ?,
		    tx_date = ?, installments = ?, first_payment_date = ?,
		    version = version + 1, synced = 0, sync_error = 0
		WHERE id = ? AND deleted_at IS NULL
		RETURNING version`,
		string(t.Kind), t.Account, t.Description, t.Category, t.Amount.String(),
		t.Date.Format(dateLayout), t.EffectiveInstallments(), firstPayment, t.ID).
		Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return version, nil
}

// SoftDeleteTransaction marks an entry deleted and returns the row as it
// was, so callers can propagate the delete downstream.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("soft delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id, "description", t.Description)
	return t, nil
}

// ListAccounts returns all credit cards ordered by name.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, credit_limit FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a     core.Account
			limit string
		)
		if err := rows.Scan(&a.ID, &a.Name, &limit); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Limit, err = decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("parse stored credit limit %q: %w", limit, err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// GetAccountByName looks up a card by its display name.
func (r *SQLiteRepository) GetAccountByName(ctx context.Context, name string) (core.Account, error) {
	var (
		a     core.Account
		limit string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, credit_limit FROM accounts WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &limit)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}

	a.Limit, err = decimal.NewFromString(limit)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse stored credit limit %q: %w", limit, err)
	}
	return a, nil
}

// CreateAccount registers a new credit card.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, credit_limit) VALUES (?, ?, ?)`,
		a.ID, a.Name, a.Limit.String())
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// DeleteAccount removes a card and its paid-month marks.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM paid_months WHERE account_name = ?`, name); err != nil {
		return fmt.Errorf("delete paid months: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListCategories returns the category names available for a transaction kind.
func (r *SQLiteRepository) ListCategories(ctx context.Context, kind core.TransactionKind) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM categories WHERE kind = ? ORDER BY name`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return names, nil
}

// LoadOverlay builds an in-memory snapshot of every paid-month mark.
func (r *SQLiteRepository) LoadOverlay(ctx context.Context) (ledger.Overlay, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT account_name, month_key FROM paid_months`)
	if err != nil {
		return nil, fmt.Errorf("load paid months: %w", err)
	}
	defer rows.Close()

	overlay := ledger.NewOverlay()
	for rows.Next() {
		var account, month string
		if err := rows.Scan(&account, &month); err != nil {
			return nil, fmt.Errorf("scan paid month: %w", err)
		}
		overlay.Mark(account, month)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paid months: %w", err)
	}

	return overlay, nil
}

// TogglePaidMonth flips the paid mark for an account/month pair and
// returns the new state: true when the month is now marked paid.
func (r *SQLiteRepository) TogglePaidMonth(ctx context.Context, account, month string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM paid_months WHERE account_name = ? AND month_key = ?`, account, month)
	if err != nil {
		return false, fmt.Errorf("clear paid month: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle rows affected: %w", err)
	}

	paid := removed == 0
	if paid {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO paid_months (account_name, month_key) VALUES (?, ?)`, account, month); err != nil {
			return false, fmt.Errorf("mark paid month: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}

	slog.InfoContext(ctx, "Paid month toggled", "account", account, "month", month, "paid", paid)
	return paid, nil
}

// PendingSyncTransaction represents minimal data needed for sync queue messages
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns entries that still need to be mirrored
// to Google Sheets.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at
		FROM transactions
		WHERE deleted_at IS NULL AND synced = 0 AND sync_error = 0
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var (
			p         PendingSyncTransaction
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		// SQLite CURRENT_TIMESTAMP text form.
		p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync transactions: %w", err)
	}

	return pending, nil
}

// MarkSynced marks a transaction as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a transaction so the sweep stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}
