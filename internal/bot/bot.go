// Package bot is the operator-facing Telegram bot: text commands mapped to
// the analytics read endpoint, formatted as chat messages.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/inversion-lab/inversion/internal/analytics"
)

type Bot struct {
	bot          *tgbotapi.BotAPI
	client       *http.Client
	analyticsURL string
	analyticsKey string
	logger       *slog.Logger
	handlers     map[string]func(chatID int64)
}

func New(token, analyticsURL, analyticsKey string, logger *slog.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b := &Bot{
		bot:          botAPI,
		client:       &http.Client{Timeout: 15 * time.Second},
		analyticsURL: analyticsURL,
		analyticsKey: analyticsKey,
		logger:       logger,
		handlers:     make(map[string]func(chatID int64)),
	}
	b.registerHandlers()

	logger.Info("bot initialized", "username", botAPI.Self.UserName)
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.handlers["start"] = b.handleStart
	b.handlers["help"] = b.handleHelp
	b.handlers["stats"] = b.handleStats
	b.handlers["funnel"] = b.handleFunnel
	b.handlers["sessions"] = b.handleSessions
	b.handlers["refresh"] = b.handleStats
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			handler, ok := b.handlers[update.Message.Command()]
			if !ok {
				b.send(update.Message.Chat.ID, "Неизвестная команда. Отправьте /help для списка команд.")
				continue
			}
			handler(update.Message.Chat.ID)
		}
	}
}

type statsPayload struct {
	Aggregated  analytics.Aggregated          `json:"aggregated"`
	Sessions    []*analytics.SessionAnalytics `json:"sessions"`
	LastUpdated int64                         `json:"lastUpdated"`
}

func (b *Bot) fetch() (*statsPayload, error) {
	reqURL := b.analyticsURL + "?key=" + url.QueryEscape(b.analyticsKey)
	resp, err := b.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch analytics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analytics endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload statsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode analytics: %w", err)
	}
	return &payload, nil
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Warn("failed to send message", "chat", chatID, "error", err)
	}
}

func (b *Bot) sendError(chatID int64, err error) {
	b.logger.Error("command failed", "error", err)
	b.send(chatID, fmt.Sprintf("❌ Ошибка: %v", err))
}
