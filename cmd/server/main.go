package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/VendorGrid/internal/config"
	"github.com/JonMunkholm/VendorGrid/internal/core"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"grid_default_page_size", cfg.Grid.DefaultPageSize,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	service := core.NewService(cfg)
	server := web.NewServer(service, cfg)

	// Background jobs stop when jobCtx is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Status(); status.Uploads.Active > 0 {
			slog.Info("waiting for spreadsheet parses to complete", "active", status.Uploads.Active)
			if err := service.WaitForParses(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			} else {
				slog.Info("all parses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		os.Exit(1)
	}

	<-stopped
	slog.Info("server stopped")
}
