package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"billetera/internal/amqp"
	"billetera/internal/core"
	"billetera/internal/storage"
)

// TransactionService orchestrates ledger writes across SQLite and AMQP.
// The local database is authoritative; sheet mirroring is best effort and
// never fails a request.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateTransaction saves a transaction locally and publishes a sync message.
// An ID is assigned when the caller did not provide one.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	// Save to SQLite first (fast, reliable)
	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	// Publish async sync message (non-blocking, version 1 for new rows)
	if err := s.publishSyncMessage(ctx, t.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", t.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return t.ID, nil
}

// UpdateTransaction rewrites an entry and queues it for re-mirroring.
func (s *TransactionService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	version, err := s.storage.UpdateTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, t.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", t.ID, "version", version, "error", err)
	}

	return nil
}

// DeleteTransaction soft deletes an entry locally and publishes a delete
// message carrying the row data for the mirror.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	deleted, err := s.storage.SoftDeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, deleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request - transaction is deleted locally
	}

	return nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id string, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishTransactionSync(ctx, id, version)
}

func (s *TransactionService) publishDeleteMessage(ctx context.Context, t core.Transaction) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}

	return s.amqpClient.PublishTransactionDelete(ctx, t.ID, t.Account, t.Description,
		t.Amount.String(), t.Date.Format("2006-01-02"))
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
