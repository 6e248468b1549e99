package services

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"casasmart/internal/metrics"
)

type tgSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type telegramNotifier struct {
	bot    tgSender
	chatID int64
	log    *zap.Logger
}

// NewTelegramNotifier connects to the Bot API; an empty token or chat disables the channel.
func NewTelegramNotifier(botToken string, opsChatID int64, log *zap.Logger) (Notifier, error) {
	if botToken == "" || opsChatID == 0 {
		log.Info("[tg][skip] token or chat id empty, telegram alerts disabled")
		return NopNotifier(), nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &telegramNotifier{bot: bot, chatID: opsChatID, log: log}, nil
}

func (t *telegramNotifier) NotifyOps(_ context.Context, subject, body string) {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(subject), html.EscapeString(body)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("[tg][send][err]", zap.Int64("chat_id", t.chatID), zap.Error(err))
		metrics.IncrementNotification("telegram", "failed")
		return
	}
	metrics.IncrementNotification("telegram", "sent")
}
