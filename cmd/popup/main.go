package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/perfectinsta/extension-client/internal/app/popup"
	"github.com/perfectinsta/extension-client/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := popup.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize popup", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		logger.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}
