package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Output
	OutputDir       string
	DownloadBaseURL string
	DefaultTitle    string

	// Auth
	APIKey string

	// Retention of generated documents
	Retention     time.Duration
	SweepInterval time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Images
	ImageTimeout  time.Duration
	ImageMaxWidth int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		OutputDir:       envOr("MD2DOC_OUTPUT_DIR", defaultOutputDir()),
		DownloadBaseURL: envOr("MD2DOC_DOWNLOAD_BASE_URL", "http://localhost:8080"),
		DefaultTitle:    os.Getenv("MD2DOC_DEFAULT_TITLE"),

		APIKey: os.Getenv("MD2DOC_API_KEY"),

		Retention:     envDuration("MD2DOC_RETENTION", 240*time.Hour),
		SweepInterval: envDuration("MD2DOC_SWEEP_INTERVAL", 24*time.Hour),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		ImageTimeout:  envDuration("IMAGE_TIMEOUT", 10*time.Second),
		ImageMaxWidth: envInt("IMAGE_MAX_WIDTH", 600),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 24 * time.Hour
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = 10 * time.Second
	}
	if cfg.ImageMaxWidth <= 0 {
		cfg.ImageMaxWidth = 600
	}

	return cfg
}

// Validate checks settings that have no safe default and creates the output
// directory.
func (c Config) Validate() error {
	if c.Retention <= 0 {
		return fmt.Errorf("MD2DOC_RETENTION must be positive, got %s", c.Retention)
	}
	u, err := url.Parse(c.DownloadBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("MD2DOC_DOWNLOAD_BASE_URL is not an absolute URL: %q", c.DownloadBaseURL)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("MD2DOC_OUTPUT_DIR is required")
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("MD2DOC_OUTPUT_DIR: %w", err)
	}
	return nil
}

func defaultOutputDir() string {
	return filepath.Join(os.TempDir(), "md2doc")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
