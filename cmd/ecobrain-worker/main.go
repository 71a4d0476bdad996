package main

import (
	"context"
	"errors"
	"os"

	"ecobrain/internal/amqp"
	"ecobrain/internal/cli"
	"ecobrain/internal/config"
	"ecobrain/internal/log"
	"ecobrain/internal/services"
	"ecobrain/internal/sheets"
	gsheet "ecobrain/internal/sheets/google"
	"ecobrain/internal/sheets/memory"
	"ecobrain/internal/worker"
)

const dialAttempts = 8

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting ecobrain-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, nil)
	ctx = log.NewContext(ctx, logger)

	mirror, err := newMirror(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledger := services.NewLedgerService(repo, nil)
	w := worker.NewLedgerWorker(mirror, repo, ledger)

	if err := amqpClient.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

// newMirror returns the Sheets client when a spreadsheet is configured and
// an in-process mirror otherwise.
func newMirror(ctx context.Context, cfg *config.Config) (sheets.Mirror, error) {
	logger := log.FromContext(ctx)
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - mirroring in memory only")
		return memory.New(), nil
	}

	creds, err := cfg.ServiceAccountCredentials()
	if err != nil {
		return nil, err
	}
	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, creds)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
