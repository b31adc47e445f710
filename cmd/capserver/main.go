package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cryptocap/internal/app"
	"cryptocap/internal/config"
	apperrors "cryptocap/internal/errors"
	"cryptocap/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "YAML config file")
	inputFile := flag.String("file", "", "market snapshot to serve")
	port := flag.Int("port", 0, "listen port")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *inputFile != "" {
		cfg.Data.InputFile = *inputFile
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The report is computed once; a snapshot that cannot be read is fatal.
	if err := application.Load(ctx); err != nil {
		attrs := []any{slog.String("path", cfg.Data.InputFile), slog.String("error", err.Error())}
		if apperrors.IsLoadError(err) {
			logger.Error("Snapshot could not be loaded, refusing to start", attrs...)
		} else {
			logger.Error("Report pipeline failed, refusing to start", attrs...)
		}
		_ = application.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
