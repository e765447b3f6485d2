package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port" envconfig:"PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level    string `yaml:"level" envconfig:"LOG_LEVEL"` // trace|debug|info|warn|error
	Format   string `yaml:"format"`                      // json|console
	Sampling bool   `yaml:"sampling"`                    // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url" envconfig:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" envconfig:"REDIS_URL"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type VideoConfig struct {
	Provider          string        `yaml:"provider"` // veo | http | noop
	GeminiKey         string        `yaml:"gemini_key" envconfig:"GEMINI_API_KEY"`
	GeminiURL         string        `yaml:"gemini_url"`
	Model             string        `yaml:"model"`
	HTTPBaseURL       string        `yaml:"http_base_url"`
	HTTPAPIKey        string        `yaml:"http_api_key" envconfig:"VIDEO_API_KEY"`
	SubmitTimeout     time.Duration `yaml:"submit_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type TrackerConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxAttempts   int           `yaml:"max_attempts"`
	PollTimeout   time.Duration `yaml:"poll_timeout"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"` // max concurrently polling jobs
	SweepCron     string        `yaml:"sweep_cron"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	MaxJobAge     time.Duration `yaml:"max_job_age"` // 0 = never auto-fail
}

type LimitsConfig struct {
	MaxPromptTokens  int `yaml:"max_prompt_tokens"`
	SubmitsPerMinute int `yaml:"submits_per_minute"`
}

type MailConfig struct {
	Host          string `yaml:"host" envconfig:"SMTP_HOST"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username" envconfig:"SMTP_USERNAME"`
	Password      string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From          string `yaml:"from"`
	FromName      string `yaml:"from_name"`
	ResultBaseURL string `yaml:"result_base_url"`
}

type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN"`
}

type StorageConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key" envconfig:"S3_ACCESS_KEY"`
	SecretKey  string        `yaml:"secret_key" envconfig:"S3_SECRET_KEY"`
	Bucket     string        `yaml:"bucket"`
	UseSSL     bool          `yaml:"use_ssl"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Video    VideoConfig    `yaml:"video"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Limits   LimitsConfig   `yaml:"limits"`
	Mail     MailConfig     `yaml:"mail"`
	Telegram TelegramConfig `yaml:"telegram"`
	Storage  StorageConfig  `yaml:"storage"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

// LoadConfig reads the YAML file at path, overlays secrets from the
// environment, applies defaults and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	cfg.Video.Provider = strings.ToLower(strings.TrimSpace(cfg.Video.Provider))
	if cfg.Video.Provider == "" {
		cfg.Video.Provider = "veo"
		if cfg.Runtime.Dev {
			cfg.Video.Provider = "noop"
		}
	}
	if cfg.Video.Model == "" {
		cfg.Video.Model = "veo-2.0-generate-001"
	}
	if cfg.Video.SubmitTimeout <= 0 {
		cfg.Video.SubmitTimeout = 30 * time.Second
	}
	if cfg.Video.Burst <= 0 {
		cfg.Video.Burst = 5
	}

	if cfg.Tracker.PollInterval <= 0 {
		cfg.Tracker.PollInterval = 20 * time.Second
	}
	if cfg.Tracker.MaxAttempts <= 0 {
		cfg.Tracker.MaxAttempts = 45
	}
	if cfg.Tracker.PollTimeout <= 0 {
		cfg.Tracker.PollTimeout = 15 * time.Second
	}
	if cfg.Tracker.NotifyTimeout <= 0 {
		cfg.Tracker.NotifyTimeout = 10 * time.Second
	}
	if cfg.Tracker.MaxConcurrent <= 0 {
		cfg.Tracker.MaxConcurrent = 256
	}
	if cfg.Tracker.SweepCron == "" {
		cfg.Tracker.SweepCron = "@every 5m"
	}
	if cfg.Tracker.StaleAfter <= 0 {
		// one full loop budget without a write means nobody is polling
		cfg.Tracker.StaleAfter = cfg.Tracker.PollInterval * time.Duration(cfg.Tracker.MaxAttempts)
	}

	if cfg.Limits.MaxPromptTokens <= 0 {
		cfg.Limits.MaxPromptTokens = 1024
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "AI Video Studio"
	}
	if cfg.Storage.PresignTTL <= 0 {
		cfg.Storage.PresignTTL = 7 * 24 * time.Hour
	}
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch cfg.Video.Provider {
	case "veo":
		if cfg.Video.GeminiKey == "" {
			return errors.New("video.gemini_key is required for provider veo")
		}
	case "http":
		if cfg.Video.HTTPBaseURL == "" {
			return errors.New("video.http_base_url is required for provider http")
		}
	case "noop":
	default:
		return fmt.Errorf("video.provider %q is not supported", cfg.Video.Provider)
	}
	if cfg.Tracker.MaxJobAge < 0 {
		return errors.New("tracker.max_job_age must not be negative")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
