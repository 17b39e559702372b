package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billetera/internal/amqp"
	"billetera/internal/core"
	"billetera/internal/storage"
)

type fakeWriter struct {
	appended []core.Transaction
	err      error
}

func (f *fakeWriter) Append(_ context.Context, t core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, t)
	return "Movimientos!A2:H2", nil
}

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTransaction(t *testing.T, repo *storage.SQLiteRepository) core.Transaction {
	t.Helper()

	tx := core.Transaction{
		ID:           uuid.NewString(),
		Kind:         core.Expense,
		Account:      "Visa Principal",
		Description:  "compra",
		Amount:       decimal.NewFromInt(45000),
		Date:         core.NewDate(2025, 9, 15),
		Installments: 3,
	}
	if err := repo.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return tx
}

func TestHandleMessageSync(t *testing.T) {
	repo := newTestStorage(t)
	writer := &fakeWriter{}
	w := NewSyncWorker(repo, writer, &fakeDeleter{}, 10)
	ctx := context.Background()

	tx := createTransaction(t, repo)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(tx.ID, 1)); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if len(writer.appended) != 1 || writer.appended[0].ID != tx.ID {
		t.Fatalf("writer received %+v, want transaction %s", writer.appended, tx.ID)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

func TestHandleMessageSyncMissingTransaction(t *testing.T) {
	repo := newTestStorage(t)
	w := NewSyncWorker(repo, &fakeWriter{}, &fakeDeleter{}, 10)

	err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(uuid.NewString(), 1))
	if err == nil {
		t.Fatal("HandleMessage() succeeded for unknown transaction")
	}
}

func TestHandleMessageSyncWriterFailure(t *testing.T) {
	repo := newTestStorage(t)
	writer := &fakeWriter{err: errors.New("sheets unavailable")}
	w := NewSyncWorker(repo, writer, &fakeDeleter{}, 10)
	ctx := context.Background()

	tx := createTransaction(t, repo)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(tx.ID, 1)); err == nil {
		t.Fatal("HandleMessage() succeeded despite writer failure")
	}

	// The row is flagged so the sweep stops retrying it.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after failure = %d, want 0 (marked sync error)", len(pending))
	}
}

func TestHandleMessageDelete(t *testing.T) {
	repo := newTestStorage(t)
	deleter := &fakeDeleter{}
	w := NewSyncWorker(repo, &fakeWriter{}, deleter, 10)

	msg := amqp.NewDeleteMessage("tx-1", "Visa Principal", "compra", "45000", "2025-09-15")
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if len(deleter.deleted) != 1 || deleter.deleted[0] != "tx-1" {
		t.Errorf("deleter received %v, want [tx-1]", deleter.deleted)
	}
}

func TestHandleMessageDeleteNoDeleter(t *testing.T) {
	repo := newTestStorage(t)
	w := NewSyncWorker(repo, &fakeWriter{}, nil, 10)

	msg := amqp.NewDeleteMessage("tx-1", "Visa Principal", "compra", "45000", "2025-09-15")
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() without deleter error = %v, want nil", err)
	}
}

func TestStartupSyncCheckDrainsBacklog(t *testing.T) {
	repo := newTestStorage(t)
	writer := &fakeWriter{}
	w := NewSyncWorker(repo, writer, &fakeDeleter{}, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createTransaction(t, repo)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	if len(writer.appended) != 3 {
		t.Errorf("writer received %d rows, want 3", len(writer.appended))
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after startup check = %d, want 0", len(pending))
	}
}

func TestProcessPendingTransactionsRespectsBatchSize(t *testing.T) {
	repo := newTestStorage(t)
	writer := &fakeWriter{}
	w := NewSyncWorker(repo, writer, &fakeDeleter{}, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTransaction(t, repo)
	}

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("ProcessPendingTransactions() error = %v", err)
	}
	if len(writer.appended) != 2 {
		t.Errorf("writer received %d rows, want batch of 2", len(writer.appended))
	}
}
