package repository

import (
	"context"
	"time"

	"ai-video-studio/internal/domain/model"
)

// -----------------------------
// Video Jobs
// -----------------------------

type VideoJobRepository interface {
	Create(ctx context.Context, tx Tx, job *model.VideoJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.VideoJob, error)
	ListByChat(ctx context.Context, tx Tx, chatID string, limit int) ([]*model.VideoJob, error)
	// ListProcessing returns processing jobs whose last write is older than staleBefore.
	ListProcessing(ctx context.Context, tx Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error)
	// UpdateIfStatus atomically merges patch only when the stored status equals expected.
	// It reports whether a row was changed. This is the only write path after Create.
	UpdateIfStatus(ctx context.Context, tx Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error)
}
