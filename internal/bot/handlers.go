package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

func (b *Bot) handleStart(chatID int64) {
	b.send(chatID,
		"👋 Привет! Я бот для мониторинга аналитики проекта Inversion.\n\n"+
			"Доступные команды:\n"+
			"/stats - показать общую статистику\n"+
			"/funnel - показать воронку конверсии\n"+
			"/sessions - последние сессии\n"+
			"/help - показать эту справку")
}

func (b *Bot) handleHelp(chatID int64) {
	b.send(chatID,
		"📊 Команды бота:\n\n"+
			"/stats - Общая статистика (уники, сессии, медианы)\n"+
			"/funnel - Воронка конверсии по этапам\n"+
			"/sessions - Последние 10 сессий\n"+
			"/refresh - Обновить данные\n\n"+
			"Бот автоматически отправляет уведомления о новых анализах.")
}

func (b *Bot) handleStats(chatID int64) {
	b.send(chatID, "⏳ Загружаю статистику...")

	payload, err := b.fetch()
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	agg := payload.Aggregated

	conversion := 0.0
	if agg.ConversionFunnel.PageViews > 0 {
		conversion = float64(agg.ConversionFunnel.CompletedAnalysis) / float64(agg.ConversionFunnel.PageViews)
	}

	b.send(chatID, fmt.Sprintf(
		"📊 *Общая статистика*\n\n"+
			"👥 Уникальных посетителей: %s\n"+
			"📱 Всего сессий: %s\n"+
			"✅ Завершили анализ: %s\n"+
			"📈 Конверсия: %s\n\n"+
			"📝 Медиана ситуаций на пользователя: %.1f\n"+
			"📏 Медиана длины ситуации: %s символов",
		formatNumber(agg.UniqueVisitors),
		formatNumber(agg.TotalSessions),
		formatNumber(agg.ConversionFunnel.CompletedAnalysis),
		formatPercent(conversion),
		agg.MedianSituationsPerUser,
		formatNumber(int(agg.MedianSituationLength+0.5)),
	))
}

func (b *Bot) handleFunnel(chatID int64) {
	b.send(chatID, "⏳ Загружаю воронку...")

	payload, err := b.fetch()
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	f := payload.Aggregated.ConversionFunnel

	conv1 := ratio(f.StartedSituation, f.PageViews)
	conv2 := ratio(f.SavedSituation, f.StartedSituation)
	conv3 := ratio(f.CompletedAnalysis, f.SavedSituation)
	conv4 := ratio(f.ClickedFeathers, f.CompletedAnalysis)
	conv5 := ratio(f.ClickedCopy, f.ClickedFeathers)
	conv6 := ratio(f.ClickedTelegram, f.CompletedAnalysis)

	b.send(chatID, fmt.Sprintf(
		"🔄 *Воронка конверсии*\n\n"+
			"1️⃣ Зашли на сайт: %s\n"+
			"   ↓ %s\n"+
			"2️⃣ Начали писать: %s\n"+
			"   ↓ %s\n"+
			"3️⃣ Сохранили ситуацию: %s\n"+
			"   ↓ %s\n"+
			"4️⃣ Отправили на анализ: %s\n"+
			"   ↓ %s\n"+
			"5️⃣ Нажали на пёрышки: %s\n"+
			"   ↓ %s\n"+
			"6️⃣ Скопировали данные: %s\n\n"+
			"💬 Перешли в Telegram: %s (%s)",
		formatNumber(f.PageViews), formatPercent(conv1),
		formatNumber(f.StartedSituation), formatPercent(conv2),
		formatNumber(f.SavedSituation), formatPercent(conv3),
		formatNumber(f.CompletedAnalysis), formatPercent(conv4),
		formatNumber(f.ClickedFeathers), formatPercent(conv5),
		formatNumber(f.ClickedCopy),
		formatNumber(f.ClickedTelegram), formatPercent(conv6),
	))
}

func (b *Bot) handleSessions(chatID int64) {
	b.send(chatID, "⏳ Загружаю сессии...")

	payload, err := b.fetch()
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	sessions := payload.Sessions
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime > sessions[j].StartTime })
	if len(sessions) > 10 {
		sessions = sessions[:10]
	}

	if len(sessions) == 0 {
		b.send(chatID, "📭 Пока нет сессий.")
		return
	}

	var msg strings.Builder
	msg.WriteString("📋 *Последние 10 сессий*\n\n")
	for i, session := range sessions {
		status := "❌"
		if session.CompletedAnalysis {
			status = "✅"
		}
		when := time.UnixMilli(session.StartTime).Format("02.01.2006 15:04")
		fmt.Fprintf(&msg, "%d. %s %s\n   Ситуаций: %d\n", i+1, status, when, session.Situations.Count)
		if session.Situations.MedianLength != nil {
			fmt.Fprintf(&msg, "   Медиана длины: %.0f симв.\n", *session.Situations.MedianLength)
		}
		msg.WriteString("\n")
	}
	b.send(chatID, msg.String())
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// formatNumber groups thousands with spaces, the way the operator chat has
// always shown counts.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s[i : i+3])
	}
	return out.String()
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
