package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripledger/internal/amqp"
	"tripledger/internal/auth"
	"tripledger/internal/backend"
	"tripledger/internal/budget"
	"tripledger/internal/cli"
	"tripledger/internal/geocode"
	apphttp "tripledger/internal/http"
	"tripledger/internal/ledger"
	"tripledger/internal/rates"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Row store for the ledger and budget sheets
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	// SQLite holds accounts and the audit trail
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	authService := auth.NewService(sqliteRepo, cfg.JWTSecret)

	normalizer := rates.NewNormalizer(
		rates.NewClient(cfg.RatesProviderURL),
		rates.NewFileStore(cfg.RatesCachePath),
		cfg.RatesBaseCurrency,
	)

	// AMQP publisher for the audit trail (optional)
	var events ledger.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without audit events", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	ledgerService := ledger.NewService(result.Store, normalizer, events, cfg.ExpensesSheet)
	budgetService := budget.NewService(result.Store, cfg.BudgetSheet)
	geocoder := geocode.NewClient(cfg.GeocodeURL, 5)

	srv := apphttp.NewServer(":"+cfg.Port, ledgerService, budgetService, normalizer, authService, geocoder)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
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

	logger.Info("Starting tripledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
