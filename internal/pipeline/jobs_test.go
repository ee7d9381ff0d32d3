package pipeline

import (
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	a := NewJob([]byte("# a"), "A")
	b := NewJob([]byte("# b"), "")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if string(a.Markdown()) != "# a" {
		t.Errorf("expected markdown %q, got %q", "# a", a.Markdown())
	}
	a.release()
	if a.Markdown() != nil {
		t.Error("expected markdown to be dropped after release")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusConverting, "parse"},
		{StatusConverting, "template"},
		{StatusConverting, "substitute"},
		{StatusConverting, "write"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("template: disk full")
	job.AddError("write: disk full")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "template: disk full" {
		t.Errorf("expected first error %q, got %q", "template: disk full", snap.Progress.Errors[0])
	}
}

func TestJob_Complete(t *testing.T) {
	job := NewJob([]byte("x"), "")
	job.AddError("image1: timeout")
	job.Complete("a.docx", "http://h/api/markdown/files/a.docx", Progress{Replaced: 3, Charts: 1, Unresolved: []string{"k"}})

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("expected completed/done, got %s/%s", snap.Status, snap.Phase)
	}
	if snap.FileName != "a.docx" || snap.FileURL != "http://h/api/markdown/files/a.docx" {
		t.Errorf("unexpected file %q url %q", snap.FileName, snap.FileURL)
	}
	if snap.Progress.Replaced != 3 || snap.Progress.Charts != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected earlier errors to be kept, got %v", snap.Progress.Errors)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	// Snapshot should always return non-nil slices.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil || snap.Progress.Unresolved == nil {
		t.Error("expected non-nil slices in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_SnapshotIsACopy(t *testing.T) {
	job := &Job{ID: "copy-test", UpdatedAt: time.Now()}
	job.AddError("first")
	snap := job.Snapshot()
	snap.Progress.Errors[0] = "changed"
	if got := job.Snapshot().Progress.Errors[0]; got != "first" {
		t.Errorf("expected job errors to be unaffected, got %q", got)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
