package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/config"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/domain/ports/repository"
	"ai-video-studio/internal/infra/adapters/notify"
	"ai-video-studio/internal/infra/adapters/video"
	"ai-video-studio/internal/infra/api"
	pg "ai-video-studio/internal/infra/db/postgres"
	"ai-video-studio/internal/infra/logging"
	"ai-video-studio/internal/infra/metrics"
	red "ai-video-studio/internal/infra/redis"
	"ai-video-studio/internal/infra/sched"
	"ai-video-studio/internal/infra/storage"
	"ai-video-studio/internal/infra/worker"
	"ai-video-studio/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop provider, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	chatRepo := pg.NewPostgresChatRepo(pool)
	var jobRepo repository.VideoJobRepository = pg.NewVideoJobRepo(pool)

	// ---- Redis (optional) ----
	var (
		limiter usecase.SubmitLimiter
		locker  red.Locker
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		jobRepo = pg.NewVideoJobRepoCacheDecorator(jobRepo, redisClient, cfg.Redis.TTL, logger)
		limiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis not configured: no job cache, submit throttling or sweep lock")
	}

	// ---- Generation providers ----
	generator, err := buildGenerator(ctx, cfg.Video, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("video provider")
	}

	// ---- Notifications ----
	notifier := buildNotifier(cfg, logger)

	// ---- Result archiving (optional) ----
	var archiver adapter.ResultArchiver
	if cfg.Storage.Endpoint != "" {
		a, err := storage.NewMinioArchiver(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("object storage")
		}
		archiver = a
	}

	// ---- Tracking ----
	loops := worker.NewPool(context.Background(), cfg.Tracker.MaxConcurrent, logger)
	reconciler := worker.NewReconciler(worker.ReconcilerConfig{
		PollInterval:   cfg.Tracker.PollInterval,
		MaxAttempts:    cfg.Tracker.MaxAttempts,
		PollTimeout:    cfg.Tracker.PollTimeout,
		NotifyTimeout:  cfg.Tracker.NotifyTimeout,
		ResultLinkBase: cfg.Mail.ResultBaseURL,
	}, jobRepo, userRepo, generator, notifier, archiver, worker.NewRegistry(), loops, logger)

	sweeper := sched.NewStuckJobSweeper(sched.SweeperConfig{
		Schedule:   cfg.Tracker.SweepCron,
		StaleAfter: cfg.Tracker.StaleAfter,
		MaxJobAge:  cfg.Tracker.MaxJobAge,
	}, jobRepo, reconciler, locker, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("sweeper")
	}

	// ---- Use cases ----
	guard := usecase.NewPromptGuard(cfg.Limits.MaxPromptTokens, logger)
	videoUC := usecase.NewVideoJobUseCase(usecase.VideoJobConfig{
		SubmitsPerMinute: cfg.Limits.SubmitsPerMinute,
		SubmitTimeout:    cfg.Video.SubmitTimeout,
	}, jobRepo, chatRepo, tm, generator, reconciler, limiter, guard, logger)
	chatUC := usecase.NewChatUseCase(chatRepo, jobRepo, logger)

	// ---- HTTP ----
	auth := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	server := api.NewServer(cfg.Server, videoUC, chatUC, auth, logger).HTTPServer()
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	sweeper.Stop()
	// processing jobs stay processing and are re-armed after restart
	loops.Stop()
	logger.Info().Msg("bye")
}

// buildGenerator registers every provider that has credentials and routes
// new submissions to cfg.Provider.
func buildGenerator(ctx context.Context, cfg config.VideoConfig, logger *zerolog.Logger) (adapter.VideoGenerator, error) {
	providers := map[string]adapter.VideoGenerator{}

	if cfg.GeminiKey != "" {
		veo, err := video.NewVeoAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		providers["veo"] = video.NewRateLimited(veo, "veo", cfg.RequestsPerSecond, cfg.Burst)
	}
	if cfg.HTTPBaseURL != "" {
		h, err := video.NewHTTPAdapter(cfg.HTTPBaseURL, cfg.HTTPAPIKey, cfg.SubmitTimeout)
		if err != nil {
			return nil, err
		}
		providers["http"] = video.NewRateLimited(h, "http", cfg.RequestsPerSecond, cfg.Burst)
	}
	if cfg.Provider == "noop" {
		providers["noop"] = video.NewNoopAdapter(3)
	}

	logger.Info().Str("provider", cfg.Provider).Int("registered", len(providers)).Msg("video providers ready")
	return video.NewMultiGenerator(cfg.Provider, providers), nil
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) adapter.Notifier {
	var channels []adapter.Notifier
	if cfg.Mail.Host != "" {
		n, err := notify.NewSMTPNotifier(cfg.Mail, cfg.Runtime.Dev, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("email notifications disabled")
		} else {
			channels = append(channels, n)
		}
	}
	if cfg.Telegram.Token != "" {
		n, err := notify.NewTelegramNotifier(cfg.Telegram.Token, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifications disabled")
		} else {
			channels = append(channels, n)
		}
	}
	if len(channels) == 0 {
		return notify.NewNoopNotifier(logger)
	}
	return notify.NewMultiNotifier(channels...)
}
