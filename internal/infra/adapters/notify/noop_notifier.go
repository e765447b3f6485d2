package notify

import (
	"context"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/infra/metrics"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier logs notices instead of delivering them. Used in dev and
// when no channel is configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	l := logger.With().Str("component", "noop_notifier").Logger()
	return &NoopNotifier{log: &l}
}

func (n *NoopNotifier) Send(ctx context.Context, note adapter.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.IncNotification("noop", "sent")
	n.log.Info().
		Str("user_id", note.UserID).
		Str("link", note.ResultLink).
		Msg("[noop-notify] video ready")
	return nil
}
