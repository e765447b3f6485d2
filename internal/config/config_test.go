package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
database:
  url: postgres://u:p@localhost:5432/video
auth:
  jwt_secret: s3cret
video:
  provider: noop
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML), false)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Tracker.PollInterval != 20*time.Second {
		t.Errorf("expected default poll interval 20s, got %s", cfg.Tracker.PollInterval)
	}
	if cfg.Tracker.MaxAttempts != 45 {
		t.Errorf("expected default max attempts 45, got %d", cfg.Tracker.MaxAttempts)
	}
	if want := 45 * 20 * time.Second; cfg.Tracker.StaleAfter != want {
		t.Errorf("expected stale_after %s, got %s", want, cfg.Tracker.StaleAfter)
	}
	if cfg.Tracker.MaxJobAge != 0 {
		t.Errorf("expected auto-fail disabled by default, got %s", cfg.Tracker.MaxJobAge)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("expected default redis ttl 1h, got %s", cfg.Redis.TTL)
	}
}

func TestParse_EnvOverlay(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Parse([]byte(minimalYAML), false)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("expected JWT secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("expected database url from env, got %q", cfg.Database.URL)
	}
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"missing database": {
			yaml: "auth:\n  jwt_secret: x\nvideo:\n  provider: noop\n",
			want: "database.url",
		},
		"veo without key": {
			yaml: "database:\n  url: x\nauth:\n  jwt_secret: x\nvideo:\n  provider: veo\n",
			want: "gemini_key",
		},
		"unknown provider": {
			yaml: "database:\n  url: x\nauth:\n  jwt_secret: x\nvideo:\n  provider: sora\n",
			want: "not supported",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml), false)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParse_DevDefaultsToNoopProvider(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  url: x\nauth:\n  jwt_secret: x\n"), true)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if cfg.Video.Provider != "noop" || !cfg.Runtime.Dev {
		t.Errorf("expected noop provider in dev mode, got %q", cfg.Video.Provider)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, false); err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
