package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               int
	LogLevel           string
	AnthropicAPIKey    string
	AnthropicModel     string
	LLMTimeoutSeconds  int
	AnalyticsFile      string
	AnalyticsSecretKey string
	SessionsDir        string
	DatabaseURL        string
	NatsURL            string
	NatsToken          string
	TelegramBotToken   string
	TelegramChatID     int64
	AnalyticsURL       string
}

func Load() Config {
	return Config{
		Port:               envInt("INVERSION_PORT", 8080),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     envStr("INVERSION_MODEL", "claude-sonnet-4-20250514"),
		LLMTimeoutSeconds:  envInt("LLM_TIMEOUT_SECONDS", 120),
		AnalyticsFile:      envStr("ANALYTICS_FILE", "analytics-data.json"),
		AnalyticsSecretKey: envStr("ANALYTICS_SECRET_KEY", ""),
		SessionsDir:        envStr("SESSIONS_DIR", "sessions"),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		TelegramBotToken:   envStr("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:     envInt64("TELEGRAM_CHAT_ID", 0),
		AnalyticsURL:       envStr("ANALYTICS_URL", "http://localhost:8080/api/analytics"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
