package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ai-video-studio/internal/domain"
)

type Task func(ctx context.Context) error

// Pool runs long-lived tasks under a process-owned context, with at most
// limit tasks in flight. It is decoupled from any request context: Stop is
// the only thing that cancels running tasks.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group
	log    *zerolog.Logger

	mu      sync.Mutex
	stopped bool
}

func NewPool(parent context.Context, limit int, logger *zerolog.Logger) *Pool {
	if limit <= 0 {
		limit = 256
	}
	ctx, cancel := context.WithCancel(parent)
	l := logger.With().Str("component", "worker_pool").Logger()
	p := &Pool{ctx: ctx, cancel: cancel, log: &l}
	p.g.SetLimit(limit)
	return p
}

// Context is the pool's lifetime; task contexts should derive from it.
func (p *Pool) Context() context.Context { return p.ctx }

// Submit starts task without blocking. It fails with domain.ErrPoolFull when
// the limit is reached, and domain.ErrPoolStopped after Stop.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return domain.ErrInvalidArgument
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return domain.ErrPoolStopped
	}
	ok := p.g.TryGo(func() error {
		defer func() {
			if rec := recover(); rec != nil {
				p.log.Error().Interface("panic", rec).Msg("task panicked")
			}
		}()
		if err := task(p.ctx); err != nil {
			p.log.Warn().Err(err).Msg("task error")
		}
		// a failing task must not cancel its siblings
		return nil
	})
	if !ok {
		return domain.ErrPoolFull
	}
	return nil
}

// Stop cancels every running task and waits for them to return.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cancel()
	_ = p.g.Wait()
}
