// cmd/mobility-portal/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mobility-portal/internal/api"
	"mobility-portal/internal/common/auth"
	"mobility-portal/internal/common/camunda"
	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/database"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/common/observability"
	"mobility-portal/internal/mobility/submission"
	"mobility-portal/internal/mobility/validation"
	"mobility-portal/internal/storage"
	"mobility-portal/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting mobility portal...",
		zap.String("auth", cfg.Auth.Strategy),
		zap.String("storage", cfg.Storage.Strategy),
		zap.String("database", cfg.Database.Strategy),
	)

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Redis (sessions and submission cache) ---
	var rdb *redis.Client
	var sessions redis.Cmdable
	if cfg.Database.Redis.Address != "" {
		rdb = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx).Err()
		}, 10, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		sessions = rdb
		zapLog.Info("Redis connected successfully")
	}

	// --- Record store with retry ---
	var backend *store.Backend
	err = retryWithBackoff(func() error {
		var err error
		backend, err = store.Open(ctx, cfg.Database, rdb, log)
		return err
	}, 15, 2*time.Second, zapLog, "Record store initialization")
	if err != nil {
		zapLog.Fatal("record store failed after retries", zap.Error(err))
	}
	defer backend.Close()

	checks := backend.Checks
	if rdb != nil {
		checks["redis"] = database.RedisCheck(rdb)
	}

	uploader, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		zapLog.Fatal("storage init failed", zap.Error(err))
	}

	provider, err := auth.New(cfg, sessions, log)
	if err != nil {
		zapLog.Fatal("auth init failed", zap.Error(err))
	}

	validator := validation.NewValidator(cfg.App.EmailDomain)
	builder := submission.NewBuilder(validator, uploader, backend.Store, log,
		submission.WithRecorder(submission.Recorders{metrics.SubmissionRecorder{}, obs}),
	)

	deps := api.Deps{
		Auth:           provider,
		Validator:      validator,
		Submitter:      builder,
		Store:          backend.Store,
		Uploads:        obs,
		Checks:         checks,
		Logger:         log,
		MaxUploadBytes: cfg.App.MaxUploadBytes,
	}

	// --- Camunda (optional) ---
	var workers *camunda.Workers
	if cfg.Camunda.Enabled {
		zeebe, err := connectZeebe(cfg, zapLog)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()

		checks["zeebe"] = camunda.HealthCheck(zeebe)
		deps.Process = camunda.NewSubmissionProcess(zeebe, cfg.Camunda.ProcessID,
			config.GetDuration(cfg.Camunda.RequestTimeout), log)

		workers, err = startWorkers(ctx, cfg, zeebe, backend.Store, log)
		if err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
	}

	// --- HTTP server ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           api.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if workers != nil {
		workers.Close()
	}

	zapLog.Info("Mobility portal stopped gracefully")
}
