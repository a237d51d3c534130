package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api"
	"github.com/lifedash/lifedash/internal/config"
	"github.com/lifedash/lifedash/internal/database"
	"github.com/lifedash/lifedash/internal/profile"
	"github.com/lifedash/lifedash/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	if err := database.Migrate(ctx, cfg.ServiceDatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	appDB, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer appDB.Close()

	serviceDB := appDB
	if cfg.ServiceDatabaseURL != cfg.DatabaseURL {
		serviceDB, err = database.New(ctx, cfg.ServiceDatabaseURL)
		if err != nil {
			slog.Error("failed to connect to service database", "error", err)
			os.Exit(1)
		}
		defer serviceDB.Close()
	}

	cache := initCache(cfg)

	grantRepo := access.NewGrantRepository(serviceDB.Pool())
	profileRepo := profile.NewRepository(serviceDB.Pool())

	approval := access.NewApprovalList(cfg.ApprovedEmails, grantRepo, cache)
	registry := access.NewRegistry(grantRepo, profileRepo)
	resolver := access.NewResolver(grantRepo, profileRepo)
	gate := access.NewGate(approval, grantRepo, profileRepo, cfg.PrimaryOwnerEmail, appDB, serviceDB)

	router := api.NewRouter(api.RouterDeps{
		Verifier:            session.NewVerifier(cfg.SessionSecret),
		Approval:            approval,
		Registry:            registry,
		Resolver:            resolver,
		Gate:                gate,
		DBPinger:            appDB,
		LoginHookSecretHash: cfg.LoginHookSecretHash,
		Version:             cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting lifedash server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// initCache returns a Redis client when REDIS_URL is configured, nil
// otherwise. The approval cache degrades gracefully without it.
func initCache(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL; approval cache disabled", "error", err)
		return nil
	}

	return redis.NewClient(opts)
}
