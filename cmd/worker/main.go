package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-wizard/internal/backend"
	"booking-wizard/internal/config"
	"booking-wizard/internal/database"
	"booking-wizard/internal/logger"
	"booking-wizard/internal/temporal/activities"
	"booking-wizard/internal/temporal/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogDevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// Connect to database
	db, err := database.NewDB(cfg.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureSchema(ctx); err != nil {
		cancel()
		zapLogger.Fatal("Failed to prepare database schema", zap.Error(err))
	}
	cancel()

	zapLogger.Info("Connected to database")

	// Connect to Temporal
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger.NewTemporalLogger(zapLogger),
	})
	if err != nil {
		zapLogger.Fatal("Failed to create Temporal client", zap.Error(err))
	}
	defer temporalClient.Close()

	zapLogger.Info("Connected to Temporal", zap.String("address", cfg.TemporalAddress))

	// Create worker
	w := worker.New(temporalClient, cfg.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.WizardWorkflow)

	// Register activities
	backendClient := backend.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.BackendTimeout}, zapLogger)
	w.RegisterActivity(activities.NewBackendActivities(backendClient))
	w.RegisterActivity(activities.NewSessionActivities(db))

	// Start worker
	if err := w.Start(); err != nil {
		zapLogger.Fatal("Failed to start worker", zap.Error(err))
	}

	zapLogger.Info("Worker started successfully", zap.String("task_queue", cfg.TaskQueue))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down worker...")
	w.Stop()
	zapLogger.Info("Worker stopped")
}
