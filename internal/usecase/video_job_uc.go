package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/domain/ports/repository"
	ports "ai-video-studio/internal/domain/ports/usecase"
	"ai-video-studio/internal/infra/logging"
	"ai-video-studio/internal/infra/metrics"
	red "ai-video-studio/internal/infra/redis"
)

// Compile-time check
var _ VideoJobUseCase = (*videoJobUC)(nil)

// VideoJobUseCase is the request path of the video job subsystem. None of
// its methods wait on the generation service beyond the initial Submit.
type VideoJobUseCase interface {
	Submit(ctx context.Context, userID, chatID, prompt string) (*model.VideoJob, error)
	GetStatus(ctx context.Context, userID, jobID string) (*StatusView, error)
	Cancel(ctx context.Context, userID, jobID string) (*StatusView, error)
}

// StatusView is what clients see of a job.
type StatusView struct {
	JobID     string               `json:"job_id"`
	ChatID    string               `json:"chat_id"`
	Status    model.VideoJobStatus `json:"status"`
	Result    *model.VideoResult   `json:"result,omitempty"`
	Message   string               `json:"message,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewStatusView(j *model.VideoJob) *StatusView {
	v := &StatusView{
		JobID:     j.ID,
		ChatID:    j.ChatID,
		Status:    j.Status,
		Error:     j.ErrorMessage,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.Result != nil {
		r := *j.Result
		v.Result = &r
	}
	if j.Status == model.VideoJobStatusProcessing {
		v.Message = j.LastRemoteMessage
	}
	return v
}

// SubmitLimiter is the per-user submission throttle.
type SubmitLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type VideoJobConfig struct {
	SubmitsPerMinute int // 0 disables throttling
	SubmitTimeout    time.Duration
}

type videoJobUC struct {
	cfg     VideoJobConfig
	jobs    repository.VideoJobRepository
	chats   repository.ChatRepository
	tm      repository.TransactionManager
	gen     adapter.VideoGenerator
	tracker ports.JobTracker
	limiter SubmitLimiter // optional
	guard   *PromptGuard
	log     *zerolog.Logger
}

func NewVideoJobUseCase(
	cfg VideoJobConfig,
	jobs repository.VideoJobRepository,
	chats repository.ChatRepository,
	tm repository.TransactionManager,
	gen adapter.VideoGenerator,
	tracker ports.JobTracker,
	limiter SubmitLimiter,
	guard *PromptGuard,
	logger *zerolog.Logger,
) *videoJobUC {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	if guard == nil {
		guard = NewPromptGuardWithCounter(0, nil)
	}
	l := logger.With().Str("component", "VideoJobUC").Logger()
	return &videoJobUC{
		cfg:     cfg,
		jobs:    jobs,
		chats:   chats,
		tm:      tm,
		gen:     gen,
		tracker: tracker,
		limiter: limiter,
		guard:   guard,
		log:     &l,
	}
}

func (u *videoJobUC) Submit(ctx context.Context, userID, chatID, prompt string) (*model.VideoJob, error) {
	defer logging.TraceDuration(u.log, "VideoJobUC.Submit")()
	log := logging.With(ctx, u.log)

	prompt, err := u.guard.Check(prompt)
	if err != nil {
		metrics.IncVideoSubmitted("rejected")
		return nil, err
	}

	if u.limiter != nil && u.cfg.SubmitsPerMinute > 0 {
		ok, err := u.limiter.Allow(ctx, red.SubmitKey(userID), u.cfg.SubmitsPerMinute, time.Minute)
		if err != nil {
			// limiter outage must not block submissions
			log.Warn().Err(err).Msg("submit rate limiter unavailable")
		} else if !ok {
			metrics.IncRateLimitTriggered()
			metrics.IncVideoSubmitted("rate_limited")
			return nil, domain.ErrRateLimited
		}
	}

	chat, err := u.chats.FindByID(ctx, repository.NoTX, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.OwnedBy(userID) {
		return nil, domain.ErrNotFound
	}

	sctx, cancel := context.WithTimeout(ctx, u.cfg.SubmitTimeout)
	token, err := u.gen.Submit(sctx, adapter.SubmitRequest{Prompt: prompt, OwnerID: userID, ContainerID: chatID})
	cancel()
	if err != nil {
		metrics.IncVideoSubmitted("provider_error")
		log.Error().Err(err).Str("chat_id", chatID).Msg("generation submit failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	job, err := model.NewVideoJob(userID, chatID, prompt, token)
	if err != nil {
		return nil, err
	}
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.jobs.Create(ctx, tx, job); err != nil {
			return err
		}
		return u.chats.AppendJob(ctx, tx, chatID, job.ID)
	})
	if err != nil {
		// remote work was started but has no record; the provider result is orphaned
		log.Error().Err(err).Str("remote_token", token).Msg("persisting accepted job failed")
		return nil, err
	}

	metrics.IncVideoSubmitted("accepted")
	u.tracker.Track(ctx, job)
	log.Info().Str("job_id", job.ID).Str("chat_id", chatID).Msg("video job accepted")
	return job, nil
}

func (u *videoJobUC) GetStatus(ctx context.Context, userID, jobID string) (*StatusView, error) {
	defer logging.TraceDuration(u.log, "VideoJobUC.GetStatus")()

	job, err := u.load(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return NewStatusView(job), nil
	}
	if u.tracker.Track(ctx, job) {
		logging.With(ctx, u.log).Debug().Str("job_id", jobID).Msg("tracking loop re-armed on read")
	}
	return NewStatusView(job), nil
}

func (u *videoJobUC) Cancel(ctx context.Context, userID, jobID string) (*StatusView, error) {
	defer logging.TraceDuration(u.log, "VideoJobUC.Cancel")()

	job, err := u.load(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return NewStatusView(job), nil
	}

	applied, err := u.jobs.UpdateIfStatus(ctx, repository.NoTX, jobID, model.VideoJobStatusProcessing, model.CancelledPatch(model.MsgCancelledByUser))
	if err != nil {
		return nil, err
	}
	u.tracker.Cancel(jobID)
	if applied {
		metrics.IncVideoTransition(string(model.VideoJobStatusCancelled))
		logging.With(ctx, u.log).Info().Str("job_id", jobID).Msg("video job cancelled by user")
	}

	// re-read: when not applied the loop finished the job first
	job, err = u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	return NewStatusView(job), nil
}

func (u *videoJobUC) load(ctx context.Context, userID, jobID string) (*model.VideoJob, error) {
	if jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}
