package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"tripledger/internal/amqp"
	"tripledger/internal/cli"
	"tripledger/internal/rates"
	"tripledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tripledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// SQLite repository for the audit trail
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// AMQP client for consuming expense events
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	normalizer := rates.NewNormalizer(
		rates.NewClient(cfg.RatesProviderURL),
		rates.NewFileStore(cfg.RatesCachePath),
		cfg.RatesBaseCurrency,
	)

	auditWorker := worker.NewAuditWorker(sqliteRepo)
	refresher := worker.NewRatesRefresher(normalizer, cfg.RatesRefreshInterval)

	// Shut down on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEventMessage) error {
			return auditWorker.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		return refresher.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
