package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"incometracker/internal/analytics"
	"incometracker/internal/auth"
	"incometracker/internal/backend"
	"incometracker/internal/cli"
	apphttp "incometracker/internal/http"
	"incometracker/internal/i18n"
	applog "incometracker/internal/log"
	"incometracker/internal/period"
	"incometracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(bcfg, logger.Logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store, err := factory.OpenStore(startCtx)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer store.Close()

	sessions, err := factory.SessionStore(startCtx, store)
	if err != nil {
		logger.Error("Failed to initialize session store", "error", err, "backend", cfg.SessionStore)
		os.Exit(1)
	}
	if sessions.Cleanup != nil {
		defer sessions.Cleanup()
	}

	publisher, err := factory.Publisher(startCtx)
	if err != nil {
		logger.Error("Failed to initialize publisher", "error", err)
		os.Exit(1)
	}
	if publisher.Cleanup != nil {
		defer publisher.Cleanup()
	}

	catalog, err := i18n.Default(cfg.DefaultLanguage)
	if err != nil {
		logger.Error("Failed to load message catalog", "error", err)
		os.Exit(1)
	}

	manager := auth.NewManager(sessions.Store, cfg.SessionTTL)
	resolver := period.NewResolver()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		CookieName:      cfg.SessionCookieName,
		CookieSecure:    cfg.CookieSecure,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		PerPage:         cfg.TransactionsPerPage,
		MaxPerPage:      cfg.MaxPerPage,
	}, apphttp.Deps{
		Auth:         services.NewAuthService(store, manager),
		Categories:   services.NewCategoryService(store),
		Transactions: services.NewTransactionService(store, publisher.Publisher),
		Analytics:    analytics.NewEngine(store, resolver),
		Resolver:     resolver,
		Catalog:      catalog,
		Logger:       logger.WithComponent(applog.ComponentHTTP),
		Ready:        store.Ping,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	authLogger := logger.WithComponent(applog.ComponentAuth)
	go manager.RunSweeper(ctx, cfg.SessionSweepInterval, func(err error) {
		authLogger.Warn("Session sweep failed", "error", err)
	})

	logger.Info("Starting incometracker server",
		"port", cfg.Port,
		"driver", cfg.DBDriver,
		"sessions", cfg.SessionStore,
		"default_language", catalog.Fallback())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
