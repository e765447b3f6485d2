package model

import (
	"time"

	"ai-video-studio/internal/domain"

	"github.com/oklog/ulid/v2"
)

type VideoJobStatus string

const (
	VideoJobStatusProcessing VideoJobStatus = "processing"
	VideoJobStatusCompleted  VideoJobStatus = "completed"
	VideoJobStatusFailed     VideoJobStatus = "failed"
	VideoJobStatusCancelled  VideoJobStatus = "cancelled"
)

const (
	MsgCancelledByUser     = "cancelled by user"
	MsgCancelledByProvider = "cancelled by provider"
	MsgGenerationFailed    = "video generation failed"
	MsgGenerationTimedOut  = "video generation timed out"
	MsgNoResultReturned    = "no result returned"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s VideoJobStatus) IsTerminal() bool {
	switch s {
	case VideoJobStatusCompleted, VideoJobStatusFailed, VideoJobStatusCancelled:
		return true
	}
	return false
}

func (s VideoJobStatus) Valid() bool {
	return s == VideoJobStatusProcessing || s.IsTerminal()
}

// VideoResult holds the two locators produced by a completed job.
type VideoResult struct {
	VideoURL   string `json:"video_url"`
	PreviewURL string `json:"preview_url"`
}

// VideoJob is the durable record of one generation request.
type VideoJob struct {
	ID                string
	ChatID            string
	UserID            string
	Prompt            string
	Status            VideoJobStatus
	Result            *VideoResult
	ErrorMessage      string
	LastRemoteMessage string
	RemoteToken       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewVideoJob builds a processing record for an accepted submission.
func NewVideoJob(userID, chatID, prompt, remoteToken string) (*VideoJob, error) {
	if userID == "" || chatID == "" || prompt == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &VideoJob{
		ID:          ulid.Make().String(),
		ChatID:      chatID,
		UserID:      userID,
		Prompt:      prompt,
		Status:      VideoJobStatusProcessing,
		RemoteToken: remoteToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Validate checks the status/result/error exclusivity rule.
func (j *VideoJob) Validate() error {
	if !j.Status.Valid() {
		return domain.ErrInvalidArgument
	}
	switch j.Status {
	case VideoJobStatusProcessing:
		if j.Result != nil || j.ErrorMessage != "" {
			return domain.ErrInvalidArgument
		}
	case VideoJobStatusCompleted:
		if j.Result == nil || j.ErrorMessage != "" {
			return domain.ErrInvalidArgument
		}
	case VideoJobStatusFailed, VideoJobStatusCancelled:
		if j.Result != nil || j.ErrorMessage == "" {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}

// Apply merges p into j in memory. Repositories use it to keep
// decorators and in-memory stores consistent with the SQL merge.
func (j *VideoJob) Apply(p JobPatch, at time.Time) {
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Result != nil {
		r := *p.Result
		j.Result = &r
	}
	if p.ErrorMessage != nil {
		j.ErrorMessage = *p.ErrorMessage
	}
	if p.LastRemoteMessage != nil {
		j.LastRemoteMessage = *p.LastRemoteMessage
	}
	j.UpdatedAt = at
}

// JobPatch is a partial update. Nil fields are left untouched.
type JobPatch struct {
	Status            *VideoJobStatus
	Result            *VideoResult
	ErrorMessage      *string
	LastRemoteMessage *string
}

func statusPtr(s VideoJobStatus) *VideoJobStatus { return &s }
func strPtr(s string) *string                    { return &s }

func CompletedPatch(r VideoResult) JobPatch {
	return JobPatch{Status: statusPtr(VideoJobStatusCompleted), Result: &r}
}

func FailedPatch(msg string) JobPatch {
	if msg == "" {
		msg = MsgGenerationFailed
	}
	return JobPatch{Status: statusPtr(VideoJobStatusFailed), ErrorMessage: strPtr(msg)}
}

func CancelledPatch(msg string) JobPatch {
	if msg == "" {
		msg = MsgCancelledByUser
	}
	return JobPatch{Status: statusPtr(VideoJobStatusCancelled), ErrorMessage: strPtr(msg)}
}

func ProgressPatch(msg string) JobPatch {
	return JobPatch{LastRemoteMessage: strPtr(msg)}
}
