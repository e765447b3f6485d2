package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
)

var _ repository.ChatRepository = (*ChatRepo)(nil)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) Create(ctx context.Context, tx repository.Tx, chat *model.Chat) error {
	const q = `
INSERT INTO chats (id, user_id, title, job_ids, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	jobIDs := chat.JobIDs
	if jobIDs == nil {
		jobIDs = []string{}
	}
	if _, err := execSQL(ctx, r.pool, tx, q, chat.ID, chat.UserID, chat.Title, jobIDs, chat.CreatedAt, chat.UpdatedAt); err != nil {
		return translateWriteErr("insert chat", err)
	}
	return nil
}

func (r *ChatRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Chat, error) {
	const q = `SELECT id, user_id, title, job_ids, created_at, updated_at FROM chats WHERE id=$1;`
	var c model.Chat
	err := pickRow(ctx, r.pool, tx, q, id).Scan(&c.ID, &c.UserID, &c.Title, &c.JobIDs, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepo) AppendJob(ctx context.Context, tx repository.Tx, chatID, jobID string) error {
	const q = `UPDATE chats SET job_ids = array_append(job_ids, $2), updated_at = NOW() WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, chatID, jobID)
	if err != nil {
		return fmt.Errorf("append job to chat: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
