package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/infra/metrics"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

const channelTelegram = "telegram"

// botSender is the slice of *tgbotapi.BotAPI the notifier uses.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages users who linked the notification bot.
type TelegramNotifier struct {
	bot botSender
	log *zerolog.Logger
}

func NewTelegramNotifier(token string, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, logger), nil
}

func newTelegramNotifier(bot botSender, logger *zerolog.Logger) *TelegramNotifier {
	l := logger.With().Str("component", "telegram_notifier").Logger()
	return &TelegramNotifier{bot: bot, log: &l}
}

func (t *TelegramNotifier) Send(ctx context.Context, n adapter.Notification) error {
	if n.TelegramChatID == nil {
		metrics.IncNotification(channelTelegram, "skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(*n.TelegramChatID, completionText(n))
	if _, err := t.bot.Send(msg); err != nil {
		metrics.IncNotification(channelTelegram, "failed")
		return fmt.Errorf("telegram send: %w", err)
	}
	metrics.IncNotification(channelTelegram, "sent")
	t.log.Debug().Int64("chat_id", *n.TelegramChatID).Msg("completion message sent")
	return nil
}
