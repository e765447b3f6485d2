package video

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ai-video-studio/internal/domain/ports/adapter"
)

var _ adapter.VideoGenerator = (*NoopAdapter)(nil)

// NoopAdapter simulates a provider for local/dev runs: every job reports
// progress and completes after CompleteAfter polls.
type NoopAdapter struct {
	CompleteAfter int
	BaseURL       string

	mu    sync.Mutex
	polls map[string]int
}

func NewNoopAdapter(completeAfter int) *NoopAdapter {
	if completeAfter <= 0 {
		completeAfter = 3
	}
	return &NoopAdapter{
		CompleteAfter: completeAfter,
		BaseURL:       "https://example.invalid/videos",
		polls:         make(map[string]int),
	}
}

func (a *NoopAdapter) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "noop-" + uuid.NewString(), nil
}

func (a *NoopAdapter) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	if err := ctx.Err(); err != nil {
		return adapter.RemoteStatus{}, err
	}
	a.mu.Lock()
	a.polls[h.Token]++
	n := a.polls[h.Token]
	if n >= a.CompleteAfter {
		delete(a.polls, h.Token)
	}
	a.mu.Unlock()

	if n < a.CompleteAfter {
		return adapter.RemoteStatus{
			State:   adapter.RemoteProcessing,
			Message: fmt.Sprintf("rendering %d%%", n*100/a.CompleteAfter),
		}, nil
	}
	return adapter.RemoteStatus{
		State: adapter.RemoteComplete,
		ResultURLs: []string{
			fmt.Sprintf("%s/%s.mp4", a.BaseURL, h.Token),
			fmt.Sprintf("%s/%s-preview.mp4", a.BaseURL, h.Token),
		},
	}, nil
}
