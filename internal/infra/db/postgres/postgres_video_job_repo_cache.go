package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
	"ai-video-studio/internal/infra/metrics"
	red "ai-video-studio/internal/infra/redis"
)

var _ repository.VideoJobRepository = (*videoJobRepoCacheDecorator)(nil)

// videoJobRepoCacheDecorator caches terminal job records. A terminal record
// never changes again, so entries need no invalidation beyond the TTL.
type videoJobRepoCacheDecorator struct {
	inner repository.VideoJobRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewVideoJobRepoCacheDecorator(inner repository.VideoJobRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.VideoJobRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "video_job_cache").Logger()
	return &videoJobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func videoJobKey(id string) string { return "video_job:" + id }

func (d *videoJobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	// inside a transaction the caller wants the row it is working on
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	val, err := d.cache.Get(ctx, videoJobKey(id))
	if err == nil {
		var job model.VideoJob
		if json.Unmarshal([]byte(val), &job) == nil && job.Status.IsTerminal() {
			metrics.IncCacheRequest("video_job", "hit")
			return &job, nil
		}
	} else if err != redis.Nil {
		d.log.Warn().Err(err).Str("job_id", id).Msg("redis get failed")
	}

	metrics.IncCacheRequest("video_job", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		if b, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, videoJobKey(id), b, d.ttl)
		}
	}
	return job, nil
}

func (d *videoJobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	return d.inner.Create(ctx, tx, job)
}

func (d *videoJobRepoCacheDecorator) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.VideoJob, error) {
	return d.inner.ListByChat(ctx, tx, chatID, limit)
}

func (d *videoJobRepoCacheDecorator) ListProcessing(ctx context.Context, tx repository.Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error) {
	return d.inner.ListProcessing(ctx, tx, staleBefore, limit)
}

// UpdateIfStatus only ever matches processing rows, which are never cached.
func (d *videoJobRepoCacheDecorator) UpdateIfStatus(ctx context.Context, tx repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error) {
	return d.inner.UpdateIfStatus(ctx, tx, id, expected, patch)
}
