//go:build !integration

package postgres

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
	red "ai-video-studio/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// mockInnerVideoJobRepo mocks the database repository that the decorator wraps.
type mockInnerVideoJobRepo struct {
	CreateFunc         func(ctx context.Context, tx repository.Tx, job *model.VideoJob) error
	FindByIDFunc       func(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error)
	ListByChatFunc     func(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.VideoJob, error)
	ListProcessingFunc func(ctx context.Context, tx repository.Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error)
	UpdateIfStatusFunc func(ctx context.Context, tx repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error)
}

func (m *mockInnerVideoJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	return m.CreateFunc(ctx, tx, job)
}
func (m *mockInnerVideoJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerVideoJobRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.VideoJob, error) {
	return m.ListByChatFunc(ctx, tx, chatID, limit)
}
func (m *mockInnerVideoJobRepo) ListProcessing(ctx context.Context, tx repository.Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error) {
	return m.ListProcessingFunc(ctx, tx, staleBefore, limit)
}
func (m *mockInnerVideoJobRepo) UpdateIfStatus(ctx context.Context, tx repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error) {
	return m.UpdateIfStatusFunc(ctx, tx, id, expected, patch)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
