package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/config"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/domain/ports/adapter"
)

var _ adapter.ResultArchiver = (*MinioArchiver)(nil)

// objectStore is the part of *minio.Client the archiver needs.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error)
}

// MinioArchiver copies provider result assets into our bucket so the stored
// locators outlive the provider's short-lived download links.
type MinioArchiver struct {
	store      objectStore
	bucket     string
	presignTTL time.Duration
	http       *http.Client
	log        *zerolog.Logger
}

func NewMinioArchiver(ctx context.Context, cfg config.StorageConfig, logger *zerolog.Logger) (*MinioArchiver, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("storage endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	a := newMinioArchiver(client, cfg.Bucket, cfg.PresignTTL, &http.Client{Timeout: 5 * time.Minute}, logger)
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newMinioArchiver(store objectStore, bucket string, ttl time.Duration, hc *http.Client, logger *zerolog.Logger) *MinioArchiver {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	l := logger.With().Str("component", "minio_archiver").Logger()
	return &MinioArchiver{store: store, bucket: bucket, presignTTL: ttl, http: hc, log: &l}
}

func (a *MinioArchiver) ensureBucket(ctx context.Context) error {
	ok, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if ok {
		return nil
	}
	if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	a.log.Info().Str("bucket", a.bucket).Msg("bucket created")
	return nil
}

// Archive uploads urls[0] as the video and urls[1] (if different) as the
// preview, returning presigned links to the stored copies.
func (a *MinioArchiver) Archive(ctx context.Context, job *model.VideoJob, urls []string) (*model.VideoResult, error) {
	if job == nil || len(urls) == 0 || urls[0] == "" {
		return nil, errors.New("nothing to archive")
	}
	videoKey := objectKey(job.ID, "video.mp4")
	videoURL, err := a.copy(ctx, urls[0], videoKey)
	if err != nil {
		return nil, err
	}
	res := &model.VideoResult{VideoURL: videoURL, PreviewURL: videoURL}
	if len(urls) > 1 && urls[1] != "" && urls[1] != urls[0] {
		previewURL, err := a.copy(ctx, urls[1], objectKey(job.ID, "preview.mp4"))
		if err != nil {
			return nil, err
		}
		res.PreviewURL = previewURL
	}
	a.log.Debug().Str("job_id", job.ID).Msg("result archived")
	return res, nil
}

func (a *MinioArchiver) copy(ctx context.Context, src, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: unexpected status %d", key, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	if _, err := a.store.PutObject(ctx, a.bucket, key, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	u, err := a.store.PresignedGetObject(ctx, a.bucket, key, a.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func objectKey(jobID, name string) string {
	return "videos/" + jobID + "/" + name
}
