package repository

import (
	"context"

	"ai-video-studio/internal/domain/model"
)

// -----------------------------
// Chats
// -----------------------------

type ChatRepository interface {
	Create(ctx context.Context, tx Tx, chat *model.Chat) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Chat, error)
	// AppendJob records jobID on the chat's job list.
	AppendJob(ctx context.Context, tx Tx, chatID, jobID string) error
}
