// Package telegram delivers operator notifications. Failures here must never
// fail the user-facing request that triggered them; callers log and move on.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func NewNotifier(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// NotifyNewAnalysis announces a freshly completed analysis to the operator chat.
func (n *Notifier) NotifyNewAnalysis(_ context.Context, situationsCount int, sessionID string, timestamp int64) error {
	when := time.UnixMilli(timestamp)
	text := fmt.Sprintf(
		"🎯 Новый анализ!\n\n📝 Количество ситуаций: %d\n🔑 Session ID: %s\n⏰ Время: %s",
		situationsCount, sessionID, when.Format("02.01.2006 15:04:05"),
	)
	return n.send(text)
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Info("operator notification sent", "chat", n.chatID)
	return nil
}
