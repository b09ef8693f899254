package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlasbank-portal/internal/api"
	"github.com/atlasbank-portal/internal/config"
	"github.com/atlasbank-portal/internal/data/mongo"
	"github.com/atlasbank-portal/internal/data/postgres"
	"github.com/atlasbank-portal/internal/engine/ledger"
	"github.com/atlasbank-portal/internal/engine/lending"
	"github.com/atlasbank-portal/internal/engine/lifecycle"
	"github.com/atlasbank-portal/internal/logger"
	"github.com/atlasbank-portal/internal/platform/activitylog"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
	"github.com/atlasbank-portal/internal/platform/persistence"
	"github.com/atlasbank-portal/internal/platform/verification"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("portal")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize the operation-event producer
	eventProducer, err := events.NewOperationEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize operation event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	customerRepo := postgres.NewCustomerRepository(log, postgresDB)
	branchRepo := postgres.NewBranchRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	businessRepo := postgres.NewBusinessRepository(log, postgresDB)
	journalRepo := postgres.NewJournalRepository(log, postgresDB)
	activityRepo := mongo.NewActivityRepository(log, mongoDB.Database())

	// Initialize the background activity-log writer
	recorder, err := activitylog.NewRecorder(cfg.ActivityLog.PoolSize, cfg.ActivityLog.WriteTimeout, activityRepo, log)
	if err != nil {
		log.Error("Failed to initialize activity-log recorder", "error", err)
		os.Exit(1)
	}

	// Initialize the verification-code gate
	codes := verification.NewStore(cfg.Verification.CodeTTL, cfg.Verification.MaxAttempts)

	// Initialize engine services
	ledgerService := ledger.NewService(postgresDB, accountRepo, businessRepo, journalRepo, recorder, eventProducer, log)
	lendingService := lending.NewService(postgresDB, loanRepo, accountRepo, customerRepo, branchRepo, businessRepo, journalRepo, recorder, eventProducer, log)
	lifecycleService := lifecycle.NewService(postgresDB, accountRepo, loanRepo, businessRepo, journalRepo, codes, recorder, eventProducer, log)

	// Initialize REST server
	server := api.NewServer(log, cfg, ledgerService, lendingService, lifecycleService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the background activity-log writer
	recorder.Close()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing operation event producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
