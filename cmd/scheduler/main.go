package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookease/bookease-backend/internal/app/scheduler"
	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/lib/sl"
)

func main() {
	cfg := config.MustLoadScheduler()
	logger := sl.Setup(cfg.Env)

	logger.Info("starting scheduler", slog.String("env", cfg.Env), slog.Duration("interval", cfg.Scheduler.Interval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := scheduler.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("scheduler stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("scheduler stopped gracefully")
}
