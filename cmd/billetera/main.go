package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"billetera/internal/amqp"
	"billetera/internal/config"
	apphttp "billetera/internal/http"
	applog "billetera/internal/log"
	"billetera/internal/services"
	"billetera/internal/storage"
)

var cli struct {
	Port   string `help:"Listen port (overrides PORT)." default:""`
	DBPath string `help:"SQLite database path (overrides SQLITE_DB_PATH)." default:""`
	Debug  bool   `help:"Enable debug logging."`
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("billetera"),
		kong.Description("Personal finance tracker web server."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentApp})
	applog.SetDefault(logger)

	cfg := config.Load()
	if cli.Port != "" {
		cfg.Port = cli.Port
	}
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

	// AMQP is optional: without it, writes stay local and the periodic
	// worker sweep picks them up later.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sync messages will not be published", "error", err)
			amqpClient = nil
		}
	}

	svc := services.NewTransactionService(repo, amqpClient)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service shutdown error", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, repo, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting billetera server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		kctx.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
