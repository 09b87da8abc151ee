package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/api/v1/router"
	"coursehub/internal/config"
	"coursehub/internal/database"
	"coursehub/internal/logger"
	"coursehub/internal/pubsub"
	"coursehub/internal/secrets"
	"coursehub/internal/storage"
	"coursehub/internal/telemetry"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	ctx := context.Background()

	// 2. JWT secret, possibly from Secret Manager
	jwtSecret, err := resolveJWTSecret(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to resolve JWT secret: %v", err)
	}

	// 3. Database pool
	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 4. Error telemetry
	reporter, flush, err := newReporter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to create telemetry reporter: %v", err)
	}
	defer flush()

	// 5. Outline export storage
	var store storage.ObjectStore
	if cfg.ExportEnabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create S3 store: %v", err)
		}
		store = s3Store
	}

	// 6. Router
	handler := router.New(router.Dependencies{
		Config:    cfg,
		DB:        db,
		JWTSecret: jwtSecret,
		Store:     store,
		Reporter:  reporter,
		Logger:    logger,
	})

	// 7. HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server shut down gracefully")
}

func resolveJWTSecret(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	accessor, err := secrets.NewSecretManagerAccessor(ctx, cfg.GCPProjectID)
	if err != nil {
		return "", err
	}
	defer accessor.Close()
	return secrets.ResolveJWTSecret(ctx, cfg.JWTSecret, cfg.JWTSecretResource, accessor)
}

// newReporter returns the telemetry reporter and a function that drains it and
// releases the publisher on shutdown.
func newReporter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (telemetry.Reporter, func(), error) {
	if !cfg.TelemetryEnabled() {
		return telemetry.NopReporter{}, func() {}, nil
	}
	publisher, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, nil, err
	}
	reporter := telemetry.NewPubSubReporter(publisher, cfg.TelemetryTopic, cfg.Environment, cfg.ProjectID, logger)
	flush := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reporter.Flush(flushCtx)
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Pub/Sub publisher")
		}
	}
	logger.Info().Str("topic", cfg.TelemetryTopic).Msg("Error telemetry enabled")
	return reporter, flush, nil
}
