package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"budgetledger/internal/config"
	"budgetledger/internal/database"
	"budgetledger/internal/events"
	"budgetledger/internal/logger"
	"budgetledger/internal/router"
	"budgetledger/internal/services"
	"budgetledger/internal/validator"
)

// @title           Budget Ledger API
// @version         1.0
// @description     Personal finance ledger: categories, transactions and monthly summaries.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Config first: .env may set ENV and LOG_LEVEL for the logger.
	appConfig, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
		logger.Get().Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()

	if err := run(appConfig); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(appConfig *config.Config) error {
	log := logger.Get()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := events.NewPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnw("failed to close event publisher", "error", err)
		}
	}()

	validator.Register()

	db := dbManager.DB()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	engine := router.New(router.Deps{
		Categories:   services.NewCategoryService(db, publisher),
		Transactions: services.NewTransactionService(db, publisher),
		Summaries:    services.NewSummaryService(db),
		Ping:         sqlDB.PingContext,
	})

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting budget ledger server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
