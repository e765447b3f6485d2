package adapter

import (
	"context"

	"ai-video-studio/internal/domain/model"
)

// ResultArchiver copies the provider's result assets into storage we own and
// returns the durable locators to persist. Errors are treated as transient.
type ResultArchiver interface {
	Archive(ctx context.Context, job *model.VideoJob, urls []string) (*model.VideoResult, error)
}
