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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adminkit/adminkit/internal/account"
	"github.com/adminkit/adminkit/internal/api"
	"github.com/adminkit/adminkit/internal/catalog"
	"github.com/adminkit/adminkit/internal/config"
	"github.com/adminkit/adminkit/internal/dispatch"
	"github.com/adminkit/adminkit/internal/metrics"
	"github.com/adminkit/adminkit/internal/pgpool"
	"github.com/adminkit/adminkit/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	collector := metrics.New()

	registry := pgpool.NewRegistry(pgpool.WithPoolGauge(collector.PoolsActive))
	poolOpts := pgpool.Options{
		Host:           cfg.DBHost,
		Port:           cfg.DBPort,
		User:           cfg.DBUser,
		Password:       cfg.DBPassword,
		Database:       cfg.DBName,
		MinConns:       cfg.DBPoolMin,
		MaxConns:       cfg.DBPoolMax,
		IdleTimeout:    cfg.DBIdleTimeout,
		ConnectTimeout: cfg.DBConnTimeout,
	}

	ctx := context.Background()
	pool, err := registry.Acquire(ctx, cfg.DBOwnerKey, poolOpts)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer registry.CloseAll(ctx)

	if err := account.EnsureSchema(ctx, pool); err != nil {
		slog.Error("failed to initialize accounts schema", "error", err)
		os.Exit(1)
	}
	for _, table := range []string{"data_reference", "enums"} {
		if err := catalog.EnsureSchema(ctx, pool, table); err != nil {
			slog.Error("failed to initialize catalog schema", "table", table, "error", err)
			os.Exit(1)
		}
	}

	policy := schema.ParsePolicy(cfg.ValidationMode)
	db := registry.Source(cfg.DBOwnerKey, poolOpts)

	accountRepo := account.NewRepository(db)
	authService := account.NewService(accountRepo, cfg.BcryptCost, account.WithMetrics(collector))
	accounts := account.Ops(accountRepo, authService, policy, dispatch.WithMetrics(collector))

	refRepo, err := catalog.NewRepository(db, "data_reference")
	if err != nil {
		slog.Error("failed to create data reference repository", "error", err)
		os.Exit(1)
	}
	dataReferences := catalog.Ops(refRepo, "data-references", "data reference", policy, dispatch.WithMetrics(collector))

	enumRepo, err := catalog.NewRepository(db, "enums")
	if err != nil {
		slog.Error("failed to create enum repository", "error", err)
		os.Exit(1)
	}
	enums := catalog.Ops(enumRepo, "enums", "enum", policy, dispatch.WithMetrics(collector))

	router := api.NewRouter(api.RouterDeps{
		Accounts:       accounts,
		DataReferences: dataReferences,
		Enums:          enums,
		DBPinger:       pool,
		Version:        cfg.Version,
		Metrics:        promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting adminkit server", "port", cfg.Port, "version", cfg.Version)
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
