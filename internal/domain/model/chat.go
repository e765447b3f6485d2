package model

import (
	"strings"
	"time"

	"ai-video-studio/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Chat is the conversation that owns a user's video jobs.
type Chat struct {
	ID        string
	UserID    string
	Title     string
	JobIDs    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewChat(userID, title string) (*Chat, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New chat"
	}
	now := time.Now().UTC()
	return &Chat{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     title,
		JobIDs:    make([]string, 0, 4),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Chat) OwnedBy(userID string) bool { return c != nil && c.UserID == userID }
