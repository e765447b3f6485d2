package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockStore struct {
	mu      sync.Mutex
	objects map[string]string
	exists  bool
	made    bool
	putErr  error
}

func newMockStore() *mockStore { return &mockStore{objects: map[string]string{}} }

func (m *mockStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return m.exists, nil
}

func (m *mockStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	m.made = true
	return nil
}

func (m *mockStore) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	m.objects[object] = string(b)
	m.mu.Unlock()
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(b))}, nil
}

func (m *mockStore) PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error) {
	return url.Parse("https://s3.example.com/" + bucket + "/" + object + "?sig=x")
}

func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video.mp4":
			_, _ = w.Write([]byte("VIDEO"))
		case "/preview.mp4":
			_, _ = w.Write([]byte("PREVIEW"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMinioArchiver_Archive(t *testing.T) {
	// --- Arrange ---
	srv := newAssetServer(t)
	store := newMockStore()
	a := newMinioArchiver(store, "videos", time.Hour, srv.Client(), newTestLogger())
	job := &model.VideoJob{ID: "job-1"}

	// --- Act ---
	res, err := a.Archive(context.Background(), job, []string{srv.URL + "/video.mp4", srv.URL + "/preview.mp4"})

	// --- Assert ---
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if store.objects["videos/job-1/video.mp4"] != "VIDEO" || store.objects["videos/job-1/preview.mp4"] != "PREVIEW" {
		t.Errorf("unexpected stored objects %v", store.objects)
	}
	if !strings.Contains(res.VideoURL, "videos/job-1/video.mp4") || !strings.Contains(res.PreviewURL, "videos/job-1/preview.mp4") {
		t.Errorf("unexpected locators %+v", res)
	}
}

func TestMinioArchiver_SameAssetUploadedOnce(t *testing.T) {
	srv := newAssetServer(t)
	store := newMockStore()
	a := newMinioArchiver(store, "videos", time.Hour, srv.Client(), newTestLogger())

	res, err := a.Archive(context.Background(), &model.VideoJob{ID: "j"}, []string{srv.URL + "/video.mp4", srv.URL + "/video.mp4"})
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(store.objects) != 1 {
		t.Errorf("expected a single upload, got %d", len(store.objects))
	}
	if res.PreviewURL != res.VideoURL {
		t.Errorf("expected preview to reuse the video locator, got %+v", res)
	}
}

func TestMinioArchiver_Errors(t *testing.T) {
	srv := newAssetServer(t)

	t.Run("download not found", func(t *testing.T) {
		a := newMinioArchiver(newMockStore(), "videos", time.Hour, srv.Client(), newTestLogger())
		if _, err := a.Archive(context.Background(), &model.VideoJob{ID: "j"}, []string{srv.URL + "/missing.mp4"}); err == nil {
			t.Fatal("expected an error for a missing asset")
		}
	})

	t.Run("upload fails", func(t *testing.T) {
		store := newMockStore()
		store.putErr = errors.New("bucket quota")
		a := newMinioArchiver(store, "videos", time.Hour, srv.Client(), newTestLogger())
		_, err := a.Archive(context.Background(), &model.VideoJob{ID: "j"}, []string{srv.URL + "/video.mp4"})
		if err == nil || !strings.Contains(err.Error(), "bucket quota") {
			t.Fatalf("expected upload error, got %v", err)
		}
	})

	t.Run("no urls", func(t *testing.T) {
		a := newMinioArchiver(newMockStore(), "videos", time.Hour, srv.Client(), newTestLogger())
		if _, err := a.Archive(context.Background(), &model.VideoJob{ID: "j"}, nil); err == nil {
			t.Fatal("expected an error with nothing to archive")
		}
	})
}

func TestMinioArchiver_EnsureBucket(t *testing.T) {
	store := newMockStore()
	a := newMinioArchiver(store, "videos", 0, nil, newTestLogger())
	if err := a.ensureBucket(context.Background()); err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if !store.made {
		t.Error("expected missing bucket to be created")
	}
	if a.presignTTL != 7*24*time.Hour {
		t.Errorf("expected default presign ttl, got %s", a.presignTTL)
	}
}
