package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"billetera/internal/core"
	"billetera/internal/storage"
)

// Service tests run against a real temp SQLite database with no AMQP
// client; publishing is best effort and skipped when the broker is absent.
func newTestService(t *testing.T) *TransactionService {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}

	service := NewTransactionService(repo, nil)
	t.Cleanup(func() { service.Close() })
	return service
}

func TestCreateTransactionAssignsID(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	id, err := service.CreateTransaction(ctx, core.Transaction{
		Kind:        core.Expense,
		Account:     "Visa Principal",
		Description: "supermercado",
		Category:    "Alimentación",
		Amount:      decimal.NewFromInt(45000),
		Date:        core.NewDate(2025, 9, 15),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateTransaction() returned empty ID")
	}

	got, err := service.storage.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Description != "supermercado" {
		t.Errorf("stored description = %q", got.Description)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	service := newTestService(t)

	_, err := service.CreateTransaction(context.Background(), core.Transaction{
		Kind:    core.Expense,
		Account: "Visa Principal",
		Amount:  decimal.NewFromInt(1000),
		Date:    core.NewDate(2025, 9, 15),
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("CreateTransaction() error = %v, want ErrEmptyDescription", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	tx := core.Transaction{
		Kind:        core.Expense,
		Account:     "Visa Principal",
		Description: "original",
		Amount:      decimal.NewFromInt(1000),
		Date:        core.NewDate(2025, 9, 15),
	}
	id, err := service.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	tx.ID = id
	tx.Description = "corregido"
	if err := service.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	got, err := service.storage.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Description != "corregido" {
		t.Errorf("description = %q, want updated value", got.Description)
	}
}

func TestDeleteTransaction(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	id, err := service.CreateTransaction(ctx, core.Transaction{
		Kind:        core.Expense,
		Account:     "Visa Principal",
		Description: "a borrar",
		Amount:      decimal.NewFromInt(1000),
		Date:        core.NewDate(2025, 9, 15),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := service.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	if _, err := service.storage.GetTransaction(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	service := newTestService(t)

	err := service.DeleteTransaction(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestServiceCloseNilComponents(t *testing.T) {
	service := &TransactionService{}
	if err := service.Close(); err != nil {
		t.Fatalf("Close() with nil components error = %v", err)
	}
}
