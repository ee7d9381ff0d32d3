package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MD2DOC_RETENTION", "WORKER_COUNT", "IMAGE_MAX_WIDTH", "MD2DOC_API_KEY"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Retention != 240*time.Hour {
		t.Errorf("expected 10 day retention, got %s", cfg.Retention)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.ImageMaxWidth != 600 {
		t.Errorf("expected max width 600, got %d", cfg.ImageMaxWidth)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected no API key, got %q", cfg.APIKey)
	}
}

func TestLoad_OverridesAndNormalises(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("IMAGE_TIMEOUT", "3s")
	t.Setenv("MAX_QUEUE_SIZE", "not a number")
	t.Setenv("MD2DOC_DEFAULT_TITLE", "周报")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected negative worker count to normalise to 4, got %d", cfg.WorkerCount)
	}
	if cfg.ImageTimeout != 3*time.Second {
		t.Errorf("expected 3s image timeout, got %s", cfg.ImageTimeout)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected fallback queue size, got %d", cfg.MaxQueueSize)
	}
	if cfg.DefaultTitle != "周报" {
		t.Errorf("expected default title override, got %q", cfg.DefaultTitle)
	}
}

func TestValidate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	good := Config{Retention: time.Hour, DownloadBaseURL: "http://localhost:8080", OutputDir: dir}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected output dir to be created: %v", err)
	}

	bad := good
	bad.Retention = 0
	if bad.Validate() == nil {
		t.Error("expected error for zero retention")
	}

	bad = good
	bad.DownloadBaseURL = "localhost"
	if bad.Validate() == nil {
		t.Error("expected error for relative base URL")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	bad = good
	bad.OutputDir = filepath.Join(file, "sub")
	if bad.Validate() == nil {
		t.Error("expected error for output dir under a file")
	}
}
