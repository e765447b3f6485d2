package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
	"ai-video-studio/internal/infra/logging"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	Create(ctx context.Context, userID, title string) (*model.Chat, error)
	ListJobs(ctx context.Context, userID, chatID string, limit int) ([]*StatusView, error)
}

type chatUC struct {
	chats repository.ChatRepository
	jobs  repository.VideoJobRepository
	log   *zerolog.Logger
}

func NewChatUseCase(chats repository.ChatRepository, jobs repository.VideoJobRepository, logger *zerolog.Logger) *chatUC {
	return &chatUC{chats: chats, jobs: jobs, log: logger}
}

func (c *chatUC) Create(ctx context.Context, userID, title string) (*model.Chat, error) {
	defer logging.TraceDuration(c.log, "ChatUC.Create")()
	chat, err := model.NewChat(userID, title)
	if err != nil {
		return nil, err
	}
	if err := c.chats.Create(ctx, repository.NoTX, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListJobs returns the chat's jobs newest first.
func (c *chatUC) ListJobs(ctx context.Context, userID, chatID string, limit int) ([]*StatusView, error) {
	defer logging.TraceDuration(c.log, "ChatUC.ListJobs")()
	chat, err := c.chats.FindByID(ctx, repository.NoTX, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.OwnedBy(userID) {
		return nil, domain.ErrNotFound
	}
	jobs, err := c.jobs.ListByChat(ctx, repository.NoTX, chatID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*StatusView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewStatusView(j))
	}
	return out, nil
}
