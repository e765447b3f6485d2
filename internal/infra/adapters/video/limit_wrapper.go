package video

import (
	"context"

	"golang.org/x/time/rate"

	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/infra/metrics"
)

// Compile-time check
var _ adapter.VideoGenerator = (*limitedGenerator)(nil)

// limitedGenerator shares one token bucket across Submit and PollStatus so
// a burst of status reads cannot starve the provider quota.
type limitedGenerator struct {
	inner    adapter.VideoGenerator
	limiter  *rate.Limiter
	provider string
}

func NewRateLimited(inner adapter.VideoGenerator, provider string, rps float64, burst int) adapter.VideoGenerator {
	if rps <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	return &limitedGenerator{
		inner:    inner,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		provider: provider,
	}
}

func (l *limitedGenerator) wait(ctx context.Context) error {
	if !l.limiter.Allow() {
		metrics.IncProviderThrottled(l.provider)
		return l.limiter.Wait(ctx)
	}
	return nil
}

func (l *limitedGenerator) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	return l.inner.Submit(ctx, req)
}

func (l *limitedGenerator) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	if err := l.wait(ctx); err != nil {
		return adapter.RemoteStatus{}, err
	}
	return l.inner.PollStatus(ctx, h)
}
