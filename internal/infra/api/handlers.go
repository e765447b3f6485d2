package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ai-video-studio/internal/infra/logging"
	"ai-video-studio/internal/usecase"
)

const maxBodyBytes = 64 << 10

type createChatRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type chatResponse struct {
	ChatID    string    `json:"chat_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type submitVideoRequest struct {
	Prompt string `json:"prompt" validate:"required,max=8000"`
}

type submitVideoResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type listVideosResponse struct {
	Jobs []*usecase.StatusView `json:"jobs"`
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	userID, _ := logging.UserID(r.Context())
	chat, err := s.chats.Create(r.Context(), userID, req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, chatResponse{ChatID: chat.ID, Title: chat.Title, CreatedAt: chat.CreatedAt})
}

func (s *Server) handleListChatVideos(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	userID, _ := logging.UserID(r.Context())
	views, err := s.chats.ListJobs(r.Context(), userID, chi.URLParam(r, "chatID"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listVideosResponse{Jobs: views})
}

func (s *Server) handleSubmitVideo(w http.ResponseWriter, r *http.Request) {
	var req submitVideoRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	userID, _ := logging.UserID(r.Context())
	job, err := s.videos.Submit(r.Context(), userID, chi.URLParam(r, "chatID"), req.Prompt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/videos/"+job.ID)
	writeJSON(w, http.StatusAccepted, submitVideoResponse{JobID: job.ID, Status: string(job.Status)})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)
	userID, _ := logging.UserID(ctx)
	view, err := s.videos.GetStatus(ctx, userID, jobID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelVideo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)
	userID, _ := logging.UserID(ctx)
	view, err := s.videos.Cancel(ctx, userID, jobID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted only when allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field "+verrs[0].Field()+": "+verrs[0].Tag())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("request failed")
	}
	writeError(w, code, publicMessage(code, err))
}
