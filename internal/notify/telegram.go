package notify

import (
	"fmt"
	"log/slog"
	"time"

	"trade_journal/internal/format"
	"trade_journal/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier отправляет уведомления журнала в Telegram.
// Без токена работает как no-op, все методы безопасны
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// New создает notifier. Пустой токен отключает уведомления
func New(token string, chatID int64, logger *slog.Logger) *Notifier {
	notifier := &Notifier{
		chatID: chatID,
		logger: logger,
	}

	if token == "" || chatID == 0 {
		logger.Info("📴 Telegram notifications disabled")
		return notifier
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to connect Telegram bot", slog.Any("error", err))
		return notifier
	}

	notifier.bot = bot

	logger.Info("📬 Telegram notifications enabled",
		slog.String("bot", bot.Self.UserName))

	return notifier
}

// Enabled сообщает, подключен ли бот
func (n *Notifier) Enabled() bool {
	return n != nil && n.bot != nil
}

// TradeClosed отправляет сводку по закрытой сделке
func (n *Notifier) TradeClosed(trade *models.Trade) {
	if !n.Enabled() {
		return
	}

	n.send(tradeMessage(trade))
}

// PlanSaved отправляет подтверждение сохранения дневного плана
func (n *Notifier) PlanSaved(plan *models.DailyPlan) {
	if !n.Enabled() {
		return
	}

	n.send(planMessage(plan))
}

func tradeMessage(trade *models.Trade) string {
	outcome := "➖"
	switch trade.Outcome {
	case "win":
		outcome = "🟢"
	case "loss":
		outcome = "🔴"
	}

	duration := "-"
	closedAt := "-"
	if trade.ExitTime != nil {
		duration = format.Duration(trade.ExitTime.Sub(trade.EntryTime))
		closedAt = format.DateTime(*trade.ExitTime)
	}

	return fmt.Sprintf("%s %s | %s\nP&L: %s\nSize: %v | Held: %s\nClosed: %s",
		outcome, trade.Symbol, trade.SetupType,
		format.Currency(trade.ProfitLoss),
		trade.PositionSize, duration, closedAt)
}

func planMessage(plan *models.DailyPlan) string {
	// Дата плана хранится как YYYY-MM-DD
	day := plan.Date
	if t, err := time.Parse("2006-01-02", plan.Date); err == nil {
		day = format.Date(t)
	}

	return fmt.Sprintf("📋 Plan for %s\nBias: %s | Levels: %d | Goals: %d",
		day, plan.MarketBias, len(plan.KeyLevels), len(plan.Goals))
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("Failed to send Telegram notification", slog.Any("error", err))
	}
}
