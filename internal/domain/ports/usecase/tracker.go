package usecase

import (
	"context"

	"ai-video-studio/internal/domain/model"
)

// JobTracker is what request-path use cases need from the background reconciler.
type JobTracker interface {
	// Track ensures a polling loop is active for job. It is idempotent and
	// reports whether this call started a new loop.
	Track(ctx context.Context, job *model.VideoJob) bool
	// Cancel fires the cancellation token of the job's loop, if any.
	Cancel(jobID string) bool
	// Active reports whether a loop is currently registered for jobID.
	Active(jobID string) bool
}
