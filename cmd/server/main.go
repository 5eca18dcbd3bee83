package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/app"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/config"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/logger"
)

// startupTimeout bounds dependency connections during boot.
const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	a, err := app.New(startupCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
