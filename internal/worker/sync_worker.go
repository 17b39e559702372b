package worker

import (
	"context"
	"fmt"
	"log/slog"

	"billetera/internal/amqp"
	"billetera/internal/core"
	"billetera/internal/sheets"
	"billetera/internal/storage"
)

// SyncWorker mirrors ledger rows from SQLite to Google Sheets.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches a sync queue message by kind.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Kind {
	case amqp.KindDelete:
		return w.handleDelete(ctx, msg)
	default:
		return w.handleSync(ctx, msg)
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	transaction, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.mirrorTransaction(ctx, transaction.ID, transaction)
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"id", msg.ID,
		"account", msg.Account,
		"description", msg.Description)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, skipping mirrored row deletion",
			"id", msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete mirrored row",
			"id", msg.ID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored row removed", "id", msg.ID)
	return nil
}

// ProcessPendingTransactions mirrors rows that never got a queue message.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog at worker startup, useful to
// recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.mirrorByID(ctx, p.ID); err != nil {
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.mirrorByID(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
		}
	}

	return nil
}

func (w *SyncWorker) mirrorByID(ctx context.Context, id string) error {
	transaction, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get transaction", "id", id, "error", err)
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return err
	}

	return w.mirrorTransaction(ctx, id, transaction)
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, id string, transaction core.Transaction) error {
	ref, err := w.writer.Append(ctx, transaction)
	if err != nil {
		// Mark as sync error so the sweep stops retrying this row.
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", id,
		"sheets_ref", ref,
		"description", transaction.Description,
		"amount", transaction.Amount.String())

	return nil
}
