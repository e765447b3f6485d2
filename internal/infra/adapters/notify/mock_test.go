package notify

import (
	"context"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockBot struct {
	SendFunc func(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(c)
	}
	return tgbotapi.Message{}, nil
}

type mockNotifier struct {
	calls    int
	SendFunc func(ctx context.Context, n adapter.Notification) error
}

func (m *mockNotifier) Send(ctx context.Context, n adapter.Notification) error {
	m.calls++
	if m.SendFunc != nil {
		return m.SendFunc(ctx, n)
	}
	return nil
}
