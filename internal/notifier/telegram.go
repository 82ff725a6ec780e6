package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/internal/signal"
)

// Telegram delivers high-grade signals to a Telegram chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a notifier. Fails if the bot token is rejected.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifySignal sends a formatted signal message.
func (t *Telegram) NotifySignal(sig signal.TradingSignal) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSignal(sig))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	t.logger.Info().Str("symbol", sig.Symbol).Str("type", sig.SignalType).Msg("signal notification sent")
	return nil
}

// FormatSignal renders a trading signal as a Telegram message body.
func FormatSignal(sig signal.TradingSignal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s (%s)\n", sig.Symbol, strings.ToUpper(sig.SignalType), sig.Ross.Grade)
	fmt.Fprintf(&b, "Score: %.1f/100  Confidence: %.0f%%\n", sig.Composite.Overall, sig.Confidence*100)
	fmt.Fprintf(&b, "Risk: %s  Horizon: %s  Urgency: %s\n", sig.Composite.RiskLevel, sig.TimeHorizon, sig.Urgency)

	if sig.EntryPrice > 0 {
		fmt.Fprintf(&b, "Entry: $%.2f  Stop: $%.2f  Target: $%.2f\n", sig.EntryPrice, sig.StopLoss, sig.TakeProfit)
	}
	if sig.RiskRewardRatio != nil {
		fmt.Fprintf(&b, "R/R: %.2f\n", *sig.RiskRewardRatio)
	}

	for _, alert := range sig.Alerts {
		fmt.Fprintf(&b, "! %s\n", alert)
	}
	for _, warning := range sig.RiskWarnings {
		fmt.Fprintf(&b, "⚠ %s\n", warning)
	}

	return b.String()
}
