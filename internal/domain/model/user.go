package model

import (
	"net/mail"
	"time"

	"ai-video-studio/internal/domain"

	"github.com/google/uuid"
)

// User is the account a request resolves to after authentication.
// TelegramChatID is set when the user linked the notification bot.
type User struct {
	ID             string
	Email          string
	DisplayName    string
	TelegramChatID *int64
	CreatedAt      time.Time
}

func NewUser(id, email, displayName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
