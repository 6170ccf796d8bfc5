package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"

	"github.com/akarpov/shortly/internal/app"
	"github.com/akarpov/shortly/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", slog.Any("err", err))
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := httplog.NewLogger("shortly", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		LogLevel: logLevel(cfg.Env),
		Concise:  cfg.Env != config.EnvProd,
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application error", slog.Any("err", err))
		os.Exit(1)
	}
}

func logLevel(env string) slog.Level {
	if env == config.EnvDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
