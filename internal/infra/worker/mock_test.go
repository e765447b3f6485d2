package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// memJobRepo is an in-memory VideoJobRepository with the same conditional
// write semantics as the Postgres one.
type memJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*model.VideoJob
	writes int
}

func newMemJobRepo(jobs ...*model.VideoJob) *memJobRepo {
	r := &memJobRepo{jobs: make(map[string]*model.VideoJob)}
	for _, j := range jobs {
		cp := *j
		r.jobs[j.ID] = &cp
	}
	return r
}

func (r *memJobRepo) Create(_ context.Context, _ repository.Tx, job *model.VideoJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.VideoJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ListByChat(context.Context, repository.Tx, string, int) ([]*model.VideoJob, error) {
	return nil, nil
}

func (r *memJobRepo) ListProcessing(context.Context, repository.Tx, time.Time, int) ([]*model.VideoJob, error) {
	return nil, nil
}

func (r *memJobRepo) UpdateIfStatus(_ context.Context, _ repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != expected {
		return false, nil
	}
	j.Apply(patch, time.Now())
	r.writes++
	return true, nil
}

func (r *memJobRepo) get(t *testing.T, id string) *model.VideoJob {
	t.Helper()
	j, err := r.FindByID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("job %s not found: %v", id, err)
	}
	return j
}

func (r *memJobRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// scriptedGenerator replays states in order and then repeats the last one.
type scriptedGenerator struct {
	mu     sync.Mutex
	script []pollResult
	calls  int
}

type pollResult struct {
	st  adapter.RemoteStatus
	err error
}

func (g *scriptedGenerator) Submit(context.Context, adapter.SubmitRequest) (string, error) {
	return "token", nil
}

func (g *scriptedGenerator) PollStatus(context.Context, adapter.JobHandle) (adapter.RemoteStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	g.calls++
	return g.script[i].st, g.script[i].err
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// mockNotifier records every attempt; SendErr makes each attempt fail.
type mockNotifier struct {
	mu      sync.Mutex
	sent    []adapter.Notification
	SendErr error
}

func (n *mockNotifier) Send(_ context.Context, msg adapter.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.SendErr
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type mockUserRepo struct {
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
}

func (m *mockUserRepo) Save(context.Context, repository.Tx, *model.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return m.FindByIDFunc(ctx, tx, id)
}

type mockArchiver struct {
	ArchiveFunc func(ctx context.Context, job *model.VideoJob, urls []string) (*model.VideoResult, error)
}

func (m *mockArchiver) Archive(ctx context.Context, job *model.VideoJob, urls []string) (*model.VideoResult, error) {
	return m.ArchiveFunc(ctx, job, urls)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
