package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inversion-lab/inversion/internal/bot"
	"github.com/inversion-lab/inversion/internal/config"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.AnalyticsSecretKey == "" {
		slog.Error("ANALYTICS_SECRET_KEY is required")
		os.Exit(1)
	}

	b, err := bot.New(cfg.TelegramBotToken, cfg.AnalyticsURL, cfg.AnalyticsSecretKey, slog.Default())
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	slog.Info("bot running", "analytics_url", cfg.AnalyticsURL)
	b.Run(ctx)
	slog.Info("bot stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
