package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
	"ai-video-studio/internal/domain/ports/usecase"
	"ai-video-studio/internal/infra/metrics"
	red "ai-video-studio/internal/infra/redis"
)

const sweepLockKey = "lock:video_job_sweeper"

type SweeperConfig struct {
	Schedule   string        // cron spec, e.g. "@every 5m"
	StaleAfter time.Duration // processing jobs untouched this long are candidates
	MaxJobAge  time.Duration // 0 disables auto-fail
	BatchSize  int
	RunTimeout time.Duration
}

// StuckJobSweeper finds processing jobs nobody is polling (process restart,
// exhausted budget, transport error) and re-arms a tracking loop for them.
// Jobs older than MaxJobAge are failed instead.
type StuckJobSweeper struct {
	cfg     SweeperConfig
	jobs    repository.VideoJobRepository
	tracker usecase.JobTracker
	locker  red.Locker // optional; serializes sweeps across replicas
	cron    *cron.Cron
	boot    sync.WaitGroup
	log     *zerolog.Logger
	now     func() time.Time
}

func NewStuckJobSweeper(cfg SweeperConfig, jobs repository.VideoJobRepository, tracker usecase.JobTracker, locker red.Locker, logger *zerolog.Logger) *StuckJobSweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 15 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}
	swLog := logger.With().Str("component", "StuckJobSweeper").Logger()
	return &StuckJobSweeper{
		cfg:     cfg,
		jobs:    jobs,
		tracker: tracker,
		locker:  locker,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     &swLog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the sweep on the cron schedule and runs one sweep right
// away so jobs orphaned by the previous process are picked up on boot.
func (s *StuckJobSweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("Starting stuck job sweeper")
	s.boot.Add(1)
	go func() {
		defer s.boot.Done()
		s.runOnce(ctx)
	}()
	s.cron.Start()
	return nil
}

// Stop waits for running sweeps, including the boot sweep, to finish.
func (s *StuckJobSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.boot.Wait()
	s.log.Info().Msg("Stopping stuck job sweeper")
}

func (s *StuckJobSweeper) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()
	rearmed, expired, err := s.Sweep(runCtx)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if rearmed > 0 || expired > 0 {
		s.log.Info().Int("rearmed", rearmed).Int("expired", expired).Msg("stale video jobs handled")
	}
}

// Sweep runs one pass and reports how many jobs were re-armed and expired.
func (s *StuckJobSweeper) Sweep(ctx context.Context) (rearmed, expired int, err error) {
	if s.locker != nil {
		token, err := s.locker.TryLock(ctx, sweepLockKey, s.cfg.RunTimeout)
		if errors.Is(err, red.ErrLockHeld) {
			s.log.Debug().Msg("another instance is sweeping")
			return 0, 0, nil
		}
		if err != nil {
			// redis down should not stop recovery on a single instance
			s.log.Warn().Err(err).Msg("sweep lock unavailable; sweeping unlocked")
		} else {
			defer func() {
				if uerr := s.locker.Unlock(context.WithoutCancel(ctx), sweepLockKey, token); uerr != nil {
					s.log.Warn().Err(uerr).Msg("sweep unlock failed")
				}
			}()
		}
	}

	now := s.now()
	stale, err := s.jobs.ListProcessing(ctx, nil, now.Add(-s.cfg.StaleAfter), s.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, job := range stale {
		if ctx.Err() != nil {
			break
		}
		if s.cfg.MaxJobAge > 0 && now.Sub(job.CreatedAt) > s.cfg.MaxJobAge {
			if s.expire(ctx, job) {
				expired++
			}
			continue
		}
		if s.tracker.Track(ctx, job) {
			rearmed++
		}
	}
	metrics.IncSwept("rearmed", rearmed)
	metrics.IncSwept("expired", expired)
	return rearmed, expired, nil
}

func (s *StuckJobSweeper) expire(ctx context.Context, job *model.VideoJob) bool {
	applied, err := s.jobs.UpdateIfStatus(ctx, nil, job.ID, model.VideoJobStatusProcessing, model.FailedPatch(model.MsgGenerationTimedOut))
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Msg("expire write failed")
		return false
	}
	s.tracker.Cancel(job.ID)
	if applied {
		metrics.IncVideoTransition(string(model.VideoJobStatusFailed))
	}
	return applied
}
