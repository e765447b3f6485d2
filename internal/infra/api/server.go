package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/config"
	"ai-video-studio/internal/usecase"
)

// Server exposes the chat and video job use cases over JSON/HTTP.
type Server struct {
	cfg      config.ServerConfig
	videos   usecase.VideoJobUseCase
	chats    usecase.ChatUseCase
	auth     *Authenticator
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewServer(cfg config.ServerConfig, videos usecase.VideoJobUseCase, chats usecase.ChatUseCase, auth *Authenticator, logger *zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	l := logger.With().Str("component", "http").Logger()
	return &Server{
		cfg:      cfg,
		videos:   videos,
		chats:    chats,
		auth:     auth,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      &l,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(CORS(s.cfg.AllowedOrigins))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Timeout(s.cfg.RequestTimeout))
		r.Use(s.auth.Middleware)

		r.Post("/chats", s.handleCreateChat)
		r.Get("/chats/{chatID}/videos", s.handleListChatVideos)
		r.Post("/chats/{chatID}/videos", s.handleSubmitVideo)
		r.Get("/videos/{jobID}", s.handleGetVideo)
		r.Post("/videos/{jobID}/cancel", s.handleCancelVideo)
	})
	return r
}

// HTTPServer returns a configured *http.Server serving Router on cfg.Port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
