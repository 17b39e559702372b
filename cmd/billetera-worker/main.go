package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"billetera/internal/amqp"
	"billetera/internal/config"
	applog "billetera/internal/log"
	gsheet "billetera/internal/sheets/google"
	"billetera/internal/storage"
	"billetera/internal/worker"
)

var cli struct {
	DBPath string `help:"SQLite database path (overrides SQLITE_DB_PATH)." default:""`
	Once   bool   `help:"Run a single sync sweep and exit."`
	Debug  bool   `help:"Enable debug logging."`
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("billetera-worker"),
		kong.Description("Background worker mirroring the ledger to Google Sheets."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting billetera-worker")

	cfg := config.Load()
	if cli.DBPath != "" {
		cfg.SQLiteDBPath = cli.DBPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		kctx.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		kctx.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sheetsClient *gsheet.Client
	if cfg.SheetsEnabled() {
		sheetsClient, err = gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			kctx.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - missing spreadsheet ID or credentials")
	}

	if sheetsClient == nil {
		logger.Info("Nothing to mirror, exiting")
		return
	}

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, sheetsClient, cfg.SyncBatchSize)

	// Recover anything written while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	if cli.Once {
		if err := syncWorker.ProcessPendingTransactions(ctx); err != nil {
			logger.Error("Sync sweep failed", "error", err)
			kctx.Exit(1)
		}
		logger.Info("Sync sweep complete")
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		kctx.Exit(1)
	}
	defer amqpClient.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(gctx, func(msg *amqp.SyncMessage) error {
			return syncWorker.HandleMessage(gctx, msg)
		})
	})

	// Periodic sweep for rows whose messages were lost or nacked.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingTransactions(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "sync_interval", cfg.SyncInterval.String())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		kctx.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
