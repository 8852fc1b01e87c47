package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/app"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/config"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("inventory-api", cfg.LogLevel, cfg.LogFormat)

	log.Info("starting inventory API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.HTTPPort),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("inventory API stopped")
}
