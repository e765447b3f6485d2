package worker

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/domain/ports/repository"
	"ai-video-studio/internal/domain/ports/usecase"
	"ai-video-studio/internal/infra/logging"
	"ai-video-studio/internal/infra/metrics"
)

var _ usecase.JobTracker = (*Reconciler)(nil)

type ReconcilerConfig struct {
	PollInterval  time.Duration
	MaxAttempts   int
	PollTimeout   time.Duration
	NotifyTimeout time.Duration
	// ResultLinkBase, when set, makes notifications link to
	// ResultLinkBase + "/videos/<jobID>" instead of the raw video URL.
	ResultLinkBase string
}

func (c *ReconcilerConfig) normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 20 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 45
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 15 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}
	c.ResultLinkBase = strings.TrimRight(c.ResultLinkBase, "/")
}

// Reconciler owns one polling loop per processing job. Loops run in the
// Pool, are keyed in the Registry, and write through UpdateIfStatus only.
type Reconciler struct {
	cfg      ReconcilerConfig
	jobs     repository.VideoJobRepository
	users    repository.UserRepository
	gen      adapter.VideoGenerator
	notifier adapter.Notifier
	archiver adapter.ResultArchiver // optional
	registry *Registry
	pool     *Pool
	log      *zerolog.Logger
}

func NewReconciler(
	cfg ReconcilerConfig,
	jobs repository.VideoJobRepository,
	users repository.UserRepository,
	gen adapter.VideoGenerator,
	notifier adapter.Notifier,
	archiver adapter.ResultArchiver,
	registry *Registry,
	pool *Pool,
	logger *zerolog.Logger,
) *Reconciler {
	cfg.normalize()
	if registry == nil {
		registry = NewRegistry()
	}
	l := logger.With().Str("component", "reconciler").Logger()
	return &Reconciler{
		cfg:      cfg,
		jobs:     jobs,
		users:    users,
		gen:      gen,
		notifier: notifier,
		archiver: archiver,
		registry: registry,
		pool:     pool,
		log:      &l,
	}
}

// Track starts a loop for job unless one is already registered.
func (r *Reconciler) Track(ctx context.Context, job *model.VideoJob) bool {
	if job == nil || job.Status.IsTerminal() {
		return false
	}
	jobCtx, cancel := context.WithCancel(r.pool.Context())
	lease, ok := r.registry.Acquire(job.ID, cancel)
	if !ok {
		cancel()
		return false
	}
	metrics.SetActiveLoops(r.registry.Len())

	snapshot := *job
	err := r.pool.Submit(func(context.Context) error {
		defer r.release(job.ID, lease, cancel)
		r.run(jobCtx, &snapshot)
		return nil
	})
	if err != nil {
		// job stays processing; the sweeper or the next status read re-arms it
		r.release(job.ID, lease, cancel)
		r.log.Warn().Err(err).Str("job_id", job.ID).Msg("could not schedule tracking loop")
		return false
	}
	r.log.Debug().Str("job_id", job.ID).Str("trace_id", logging.TraceID(ctx)).Msg("tracking loop started")
	return true
}

func (r *Reconciler) Cancel(jobID string) bool { return r.registry.Cancel(jobID) }

func (r *Reconciler) Active(jobID string) bool { return r.registry.Active(jobID) }

func (r *Reconciler) release(jobID string, lease Lease, cancel context.CancelFunc) {
	cancel()
	r.registry.Release(jobID, lease)
	metrics.SetActiveLoops(r.registry.Len())
}

func (r *Reconciler) run(ctx context.Context, job *model.VideoJob) {
	log := r.log.With().Str("job_id", job.ID).Logger()
	lastMsg := job.LastRemoteMessage

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			t := time.NewTimer(r.cfg.PollInterval)
			select {
			case <-ctx.Done():
				t.Stop()
				log.Debug().Int("attempt", attempt).Msg("loop cancelled")
				return
			case <-t.C:
			}
		}
		if ctx.Err() != nil {
			return
		}
		if done := r.pollOnce(ctx, &log, job, &lastMsg); done {
			return
		}
	}
	metrics.IncPollExhausted()
	log.Info().Int("attempts", r.cfg.MaxAttempts).Msg("poll budget exhausted; job left processing")
}

// pollOnce performs one attempt and reports whether the loop should stop.
func (r *Reconciler) pollOnce(ctx context.Context, log *zerolog.Logger, job *model.VideoJob, lastMsg *string) bool {
	pctx, cancel := context.WithTimeout(ctx, r.cfg.PollTimeout)
	start := time.Now()
	st, err := r.gen.PollStatus(pctx, adapter.JobHandle{
		OwnerID:     job.UserID,
		ContainerID: job.ChatID,
		Token:       job.RemoteToken,
	})
	cancel()

	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		metrics.IncPollError()
		log.Debug().Err(err).Dur("latency", time.Since(start)).Msg("poll transport error; stopping loop")
		return true
	}

	switch st.State {
	case adapter.RemoteFailed:
		r.finish(ctx, log, job, model.FailedPatch(st.Message))
		return true

	case adapter.RemoteCancelled:
		r.finish(ctx, log, job, model.CancelledPatch(model.MsgCancelledByProvider))
		return true

	case adapter.RemoteComplete:
		r.complete(ctx, log, job, st.ResultURLs)
		return true

	case adapter.RemoteQueued, adapter.RemoteProcessing:
		if st.Message == "" || st.Message == *lastMsg {
			return false
		}
		applied, err := r.jobs.UpdateIfStatus(ctx, nil, job.ID, model.VideoJobStatusProcessing, model.ProgressPatch(st.Message))
		if err != nil {
			log.Warn().Err(err).Msg("progress write failed")
			return false
		}
		if !applied {
			// someone else finished the job
			return true
		}
		*lastMsg = st.Message
		return false

	default:
		log.Debug().Str("state", string(st.State)).Msg("unknown remote state; treating as processing")
		return false
	}
}

func (r *Reconciler) complete(ctx context.Context, log *zerolog.Logger, job *model.VideoJob, urls []string) {
	if len(urls) == 0 || urls[0] == "" {
		r.finish(ctx, log, job, model.FailedPatch(model.MsgNoResultReturned))
		return
	}
	result := model.VideoResult{VideoURL: urls[0], PreviewURL: urls[0]}
	if len(urls) > 1 && urls[1] != "" {
		result.PreviewURL = urls[1]
	}

	if r.archiver != nil {
		archived, err := r.archiver.Archive(ctx, job, []string{result.VideoURL, result.PreviewURL})
		if err != nil {
			log.Warn().Err(err).Msg("archiving result failed; job left processing for re-arm")
			return
		}
		result = *archived
	}

	if r.finish(ctx, log, job, model.CompletedPatch(result)) {
		r.notify(ctx, log, job, result)
	}
}

// finish writes a terminal patch if the job is still processing.
func (r *Reconciler) finish(ctx context.Context, log *zerolog.Logger, job *model.VideoJob, patch model.JobPatch) bool {
	if ctx.Err() != nil {
		return false
	}
	applied, err := r.jobs.UpdateIfStatus(ctx, nil, job.ID, model.VideoJobStatusProcessing, patch)
	if err != nil {
		log.Error().Err(err).Msg("terminal write failed")
		return false
	}
	status := string(*patch.Status)
	if !applied {
		log.Debug().Str("status", status).Msg("terminal write skipped; job no longer processing")
		return false
	}
	metrics.IncVideoTransition(status)
	log.Info().Str("status", status).Msg("video job finished")
	return true
}

func (r *Reconciler) notify(ctx context.Context, log *zerolog.Logger, job *model.VideoJob, result model.VideoResult) {
	if r.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.NotifyTimeout)
	defer cancel()

	n := adapter.Notification{
		UserID:     job.UserID,
		Prompt:     job.Prompt,
		ResultLink: result.VideoURL,
	}
	if r.cfg.ResultLinkBase != "" {
		n.ResultLink = r.cfg.ResultLinkBase + "/videos/" + job.ID
	}
	if r.users != nil {
		u, err := r.users.FindByID(nctx, nil, job.UserID)
		if err != nil {
			metrics.IncNotification("any", "skipped")
			log.Warn().Err(err).Msg("notification skipped: user lookup failed")
			return
		}
		n.To = u.Email
		n.TelegramChatID = u.TelegramChatID
	}

	if err := r.notifier.Send(nctx, n); err != nil {
		log.Warn().Err(err).Msg("completion notification failed")
		return
	}
	log.Debug().Msg("completion notification sent")
}
