package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-wizard/internal/api"
	"booking-wizard/internal/backend"
	"booking-wizard/internal/boardingpass"
	"booking-wizard/internal/cache"
	"booking-wizard/internal/config"
	"booking-wizard/internal/database"
	"booking-wizard/internal/logger"
	"booking-wizard/internal/service"

	"go.temporal.io/sdk/client"
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

	// Boarding pass cache is optional
	var artifacts boardingpass.Cache
	var cacheHealth api.HealthChecker
	if cfg.CacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		artifactCache, err := cache.NewArtifactCache(ctx, cache.Config{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			TTL:          cfg.BoardingPassCacheTTL,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		cancel()
		if err != nil {
			zapLogger.Warn("Boarding pass cache disabled", zap.Error(err))
		} else {
			defer artifactCache.Close()
			artifacts = artifactCache
			cacheHealth = artifactCache
			zapLogger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
	}

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

	backendClient := backend.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.BackendTimeout}, zapLogger)
	passes := boardingpass.NewRetriever(backendClient, artifacts, zapLogger)

	svc := service.NewWizardService(temporalClient, db, backendClient, passes, service.Options{
		TaskQueue:      cfg.TaskQueue,
		IdleTimeout:    cfg.SessionIdleTimeout,
		BackendTimeout: cfg.BackendTimeout,
	}, zapLogger)

	// Create API handler
	handler := api.NewHandler(svc, zapLogger)
	if cacheHealth != nil {
		handler.WithHealthCheck("cache", cacheHealth)
	}

	// Create router
	router := api.NewRouter(handler, zapLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
