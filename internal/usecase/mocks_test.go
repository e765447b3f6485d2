//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- In-memory VideoJobRepository ----

type memJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*model.VideoJob
	writes int

	CreateErr          error
	UpdateIfStatusFunc func(id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error)
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.VideoJob)}
}

func (r *memJobRepo) put(j *model.VideoJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.ID] = &cp
}

func (r *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.put(job)
	return nil
}

func (r *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.VideoJob
	for _, j := range r.jobs {
		if j.ChatID == chatID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memJobRepo) ListProcessing(ctx context.Context, tx repository.Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error) {
	return nil, nil
}

func (r *memJobRepo) UpdateIfStatus(ctx context.Context, tx repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error) {
	if r.UpdateIfStatusFunc != nil {
		return r.UpdateIfStatusFunc(id, expected, patch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != expected {
		return false, nil
	}
	j.Apply(patch, time.Now().UTC())
	r.writes++
	return true, nil
}

// ---- In-memory ChatRepository ----

type memChatRepo struct {
	mu    sync.Mutex
	chats map[string]*model.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[string]*model.Chat)}
}

func (r *memChatRepo) Create(ctx context.Context, tx repository.Tx, chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *chat
	r.chats[chat.ID] = &cp
	return nil
}

func (r *memChatRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	cp.JobIDs = append([]string(nil), c.JobIDs...)
	return &cp, nil
}

func (r *memChatRepo) AppendJob(ctx context.Context, tx repository.Tx, chatID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	c.JobIDs = append(c.JobIDs, jobID)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock VideoGenerator ----

type mockGenerator struct {
	mu         sync.Mutex
	submits    int
	polls      int
	SubmitFunc func(ctx context.Context, req adapter.SubmitRequest) (string, error)
}

func (m *mockGenerator) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	m.mu.Lock()
	m.submits++
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return "op-1", nil
}

func (m *mockGenerator) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	m.mu.Lock()
	m.polls++
	m.mu.Unlock()
	return adapter.RemoteStatus{State: adapter.RemoteProcessing}, nil
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits + m.polls
}

// ---- Mock JobTracker ----

type mockTracker struct {
	mu        sync.Mutex
	tracked   []string
	cancelled []string
	active    map[string]bool
}

func newMockTracker() *mockTracker { return &mockTracker{active: map[string]bool{}} }

func (m *mockTracker) Track(ctx context.Context, job *model.VideoJob) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked = append(m.tracked, job.ID)
	if m.active[job.ID] {
		return false
	}
	m.active[job.ID] = true
	return true
}

func (m *mockTracker) Cancel(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, jobID)
	was := m.active[jobID]
	delete(m.active, jobID)
	return was
}

func (m *mockTracker) Active(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[jobID]
}

// ---- Mock SubmitLimiter ----

type mockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}
