// Package main BookEase API
//
// @title           BookEase API
// @version         1.0
// @description     Регистрация, вход и оплата подписок BookEase.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookease/bookease-backend/internal/app/bookease"
	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.Setup(cfg.Env)

	logger.Info("starting bookease-api", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bookease.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("bookease-api stopped gracefully")
}
