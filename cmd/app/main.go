package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardbinder.app/internal/app"
	"cardbinder.app/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading it")
	}

	logger.NewWithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL"))).SetDefault()

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	cfg := application.Config()
	slog.Info("Server configuration",
		"port", cfg.Server.Port,
		"baseURL", cfg.AppBaseURL,
		"database", cfg.Database.Driver.String(),
		"cacheStore", cfg.Cache.Store.String(),
		"notifier", cfg.Ownership.Notifier.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupGracefulShutdown(cancel, application)

	slog.Info("Starting card binder API...")
	if err := application.Start(ctx); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
}

func setupGracefulShutdown(cancel context.CancelFunc, app *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("Received shutdown signal...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error during graceful shutdown", "error", err)
		}

		os.Exit(0)
	}()
}
