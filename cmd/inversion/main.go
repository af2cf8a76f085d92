package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inversion-lab/inversion/internal/analysis"
	"github.com/inversion-lab/inversion/internal/analytics"
	"github.com/inversion-lab/inversion/internal/anthropic"
	"github.com/inversion-lab/inversion/internal/api"
	"github.com/inversion-lab/inversion/internal/config"
	"github.com/inversion-lab/inversion/internal/events"
	"github.com/inversion-lab/inversion/internal/telegram"
	"github.com/inversion-lab/inversion/internal/wizard"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("inversion starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	analyzer := analysis.New(llm, slog.Default())

	// Analytics store: Postgres when configured, JSON file otherwise
	var store analytics.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := analytics.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		store = pgStore
		slog.Info("analytics store ready", "backend", "postgres")
	} else {
		store = analytics.NewFileStore(cfg.AnalyticsFile)
		slog.Info("analytics store ready", "backend", "file", "path", cfg.AnalyticsFile)
	}
	defer store.Close()

	// Operator notifier (optional — the app works without Telegram, just no
	// operator pings)
	var notifier analytics.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tgNotifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, slog.Default())
		if err != nil {
			slog.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tgNotifier
		slog.Info("telegram notifier ready", "chat", cfg.TelegramChatID)
	} else {
		slog.Warn("telegram not configured — running without operator notifications")
	}

	// NATS fan-out (optional)
	var publisher analytics.Publisher
	if cfg.NatsURL != "" {
		natsClient, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = natsClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	recorder := analytics.NewRecorder(store, notifier, publisher, slog.Default())
	wiz := wizard.NewManager(cfg.SessionsDir, slog.Default())

	if cfg.AnalyticsSecretKey == "" {
		slog.Warn("ANALYTICS_SECRET_KEY not set — analytics read endpoint disabled")
	}

	srv := api.NewServer(cfg.Port, analyzer, recorder, wiz, cfg.AnalyticsSecretKey, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("inversion ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("inversion stopped")
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
