package notify

import (
	"context"
	"errors"

	"ai-video-studio/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*MultiNotifier)(nil)

// MultiNotifier delivers through every configured channel. A failing
// channel does not stop the others; their errors are joined.
type MultiNotifier struct {
	channels []adapter.Notifier
}

func NewMultiNotifier(channels ...adapter.Notifier) *MultiNotifier {
	kept := make([]adapter.Notifier, 0, len(channels))
	for _, c := range channels {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &MultiNotifier{channels: kept}
}

func (m *MultiNotifier) Len() int { return len(m.channels) }

func (m *MultiNotifier) Send(ctx context.Context, n adapter.Notification) error {
	var errs []error
	for _, c := range m.channels {
		if err := c.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
