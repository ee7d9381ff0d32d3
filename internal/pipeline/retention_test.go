package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestSweep_RemovesOnlyOldDocx(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-11 * 24 * time.Hour)

	touch(t, filepath.Join(dir, "old.docx"), old)
	touch(t, filepath.Join(dir, "old_template.DOCX"), old)
	touch(t, filepath.Join(dir, "new.docx"), now)
	touch(t, filepath.Join(dir, "old.md"), old)
	if err := os.Mkdir(filepath.Join(dir, "sub.docx"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := Sweep(dir, 240*time.Hour, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 files removed, got %d", removed)
	}
	for name, want := range map[string]bool{"old.docx": false, "old_template.DOCX": false, "new.docx": true, "old.md": true, "sub.docx": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Errorf("%s: expected exists=%v", name, want)
		}
	}
}

func TestSweep_MissingDir(t *testing.T) {
	removed, err := Sweep(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Errorf("expected no-op for missing dir, got %d, %v", removed, err)
	}
}
