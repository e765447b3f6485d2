package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/repository"
)

var _ repository.VideoJobRepository = (*videoJobRepo)(nil)

type videoJobRepo struct {
	pool *pgxpool.Pool
}

func NewVideoJobRepo(pool *pgxpool.Pool) *videoJobRepo {
	return &videoJobRepo{pool: pool}
}

const videoJobColumns = `id, chat_id, user_id, prompt, status, video_url, preview_url,
       error_message, last_remote_message, remote_token, created_at, updated_at`

func (r *videoJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.VideoJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	var videoURL, previewURL *string
	if job.Result != nil {
		videoURL, previewURL = &job.Result.VideoURL, &job.Result.PreviewURL
	}

	const q = `
INSERT INTO video_jobs (` + videoJobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`
	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.ChatID, job.UserID, job.Prompt, string(job.Status), videoURL, previewURL,
		job.ErrorMessage, job.LastRemoteMessage, job.RemoteToken, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return translateWriteErr("insert video job", err)
	}
	return nil
}

func (r *videoJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VideoJob, error) {
	const q = `SELECT ` + videoJobColumns + ` FROM video_jobs WHERE id = $1;`
	job, err := scanVideoJob(pickRow(ctx, r.pool, tx, q, id))
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *videoJobRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.VideoJob, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT ` + videoJobColumns + `
  FROM video_jobs
 WHERE chat_id = $1
 ORDER BY created_at DESC, id DESC
 LIMIT $2;`
	return r.list(ctx, tx, q, chatID, limit)
}

func (r *videoJobRepo) ListProcessing(ctx context.Context, tx repository.Tx, staleBefore time.Time, limit int) ([]*model.VideoJob, error) {
	if limit <= 0 {
		limit = 500
	}
	const q = `
SELECT ` + videoJobColumns + `
  FROM video_jobs
 WHERE status = 'processing' AND updated_at < $1
 ORDER BY updated_at ASC
 LIMIT $2;`
	return r.list(ctx, tx, q, staleBefore, limit)
}

// UpdateIfStatus merges patch into the row only while it still has the
// expected status. Nil patch fields keep their column values.
func (r *videoJobRepo) UpdateIfStatus(ctx context.Context, tx repository.Tx, id string, expected model.VideoJobStatus, patch model.JobPatch) (bool, error) {
	var status, videoURL, previewURL *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	if patch.Result != nil {
		videoURL, previewURL = &patch.Result.VideoURL, &patch.Result.PreviewURL
	}

	const q = `
UPDATE video_jobs SET
  status              = COALESCE($3::text, status),
  video_url           = COALESCE($4::text, video_url),
  preview_url         = COALESCE($5::text, preview_url),
  error_message       = COALESCE($6::text, error_message),
  last_remote_message = COALESCE($7::text, last_remote_message),
  updated_at          = $8
WHERE id = $1 AND status = $2;`
	cmd, err := execSQL(ctx, r.pool, tx, q,
		id, string(expected), status, videoURL, previewURL,
		patch.ErrorMessage, patch.LastRemoteMessage, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update video job %s: %w", id, err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *videoJobRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.VideoJob, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.VideoJob, 0, 8)
	for rows.Next() {
		job, err := scanVideoJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanVideoJob(row pgx.Row) (*model.VideoJob, error) {
	var (
		j                    model.VideoJob
		status               string
		videoURL, previewURL *string
	)
	err := row.Scan(&j.ID, &j.ChatID, &j.UserID, &j.Prompt, &status, &videoURL, &previewURL,
		&j.ErrorMessage, &j.LastRemoteMessage, &j.RemoteToken, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrInvalidExecContext) || errors.Is(err, domain.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	j.Status = model.VideoJobStatus(status)
	if videoURL != nil {
		j.Result = &model.VideoResult{VideoURL: *videoURL}
		if previewURL != nil {
			j.Result.PreviewURL = *previewURL
		}
	}
	return &j, nil
}

// translateWriteErr maps constraint violations onto domain errors.
func translateWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidArgument)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
