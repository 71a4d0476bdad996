package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"ecobrain/internal/amqp"
	"ecobrain/internal/cli"
	"ecobrain/internal/log"
	"ecobrain/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentScheduler)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// copies are published so the worker mirrors them like any other write
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	processor := services.NewRecurringProcessor(repo, services.NewLedgerService(repo, publisher))

	scheduler := cron.New(cron.WithLocation(time.UTC))
	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, func(context.Context) {
		<-scheduler.Stop().Done()
	})
	ctx = log.NewContext(ctx, logger)

	recur := func() {
		if _, err := processor.ProcessDueTransactions(ctx, time.Now().UTC()); err != nil {
			logger.Error("Recurring transaction processing failed", log.FieldError, err)
		}
	}
	rollover := func() {
		n, err := processor.RolloverBudgets(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Budget rollover failed", log.FieldError, err)
			return
		}
		logger.Info("Budget rollover complete", log.FieldOperation, log.OpRollover, "created", n)
	}

	if _, err := scheduler.AddFunc(cfg.RecurringSchedule, recur); err != nil {
		logger.Error("Invalid recurring schedule", log.FieldError, err, "schedule", cfg.RecurringSchedule)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(cfg.BudgetRolloverSchedule, rollover); err != nil {
		logger.Error("Invalid budget rollover schedule", log.FieldError, err, "schedule", cfg.BudgetRolloverSchedule)
		os.Exit(1)
	}

	// both jobs are idempotent, so catch up on anything missed while down
	recur()
	rollover()

	scheduler.Start()
	logger.Info("Scheduler started",
		"recurring_schedule", cfg.RecurringSchedule,
		"rollover_schedule", cfg.BudgetRolloverSchedule)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
