package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db", "history.sqlite"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_JobLifecycle(t *testing.T) {
	s := newTestStorage(t)

	src := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(src, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	id, err := s.StartJob("batch-1", src, "image", "To PNG")
	if err != nil {
		t.Fatalf("StartJob() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("StartJob() id = %d", id)
	}

	if err := s.FinishJob(id, "/out/a_converted.png", "completed", "Completed", 1500*time.Millisecond); err != nil {
		t.Fatalf("FinishJob() error = %v", err)
	}

	jobs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("Recent() = %d jobs, want 1", len(jobs))
	}

	j := jobs[0]
	if j.BatchID != "batch-1" || j.Category != "image" || j.Preset != "To PNG" {
		t.Errorf("job = %+v", j)
	}
	if j.SrcSize != 5 {
		t.Errorf("SrcSize = %d, want 5", j.SrcSize)
	}
	if j.Status != StatusCompleted || j.DstPath != "/out/a_converted.png" || j.Error != "" {
		t.Errorf("job = %+v", j)
	}
	if j.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", j.Duration)
	}
	if j.FinishedAt.IsZero() {
		t.Error("FinishedAt is zero")
	}
}

func TestStorage_FinishJobErrors(t *testing.T) {
	s := newTestStorage(t)

	id, err := s.StartJob("b", "/missing.mp4", "video", "To MP4")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.FinishJob(id, "", "running", "", 0); err == nil {
		t.Error("FinishJob() expected error for non-final status")
	}
	if err := s.FinishJob(id+100, "", "failed", "x", 0); err == nil {
		t.Error("FinishJob() expected error for unknown id")
	}
}

func TestStorage_GetStats(t *testing.T) {
	s := newTestStorage(t)

	finish := func(cat, status string) {
		id, err := s.StartJob("b", "/x", cat, "p")
		if err != nil {
			t.Fatal(err)
		}
		if status != "" {
			if err := s.FinishJob(id, "", status, "msg", 0); err != nil {
				t.Fatal(err)
			}
		}
	}

	finish("image", "completed")
	finish("image", "completed")
	finish("audio", "completed")
	finish("video", "failed")
	finish("video", "cancelled")
	finish("document", "")

	st, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if st.Total != 6 || st.Completed != 3 || st.Failed != 1 || st.Cancelled != 1 || st.InProgress != 1 {
		t.Errorf("GetStats() = %+v", st)
	}
	if st.ByCategory["image"] != 2 || st.ByCategory["audio"] != 1 {
		t.Errorf("ByCategory = %v", st.ByCategory)
	}

	n, err := s.CleanupInProgress()
	if err != nil {
		t.Fatalf("CleanupInProgress() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CleanupInProgress() = %d, want 1", n)
	}

	st, _ = s.GetStats()
	if st.InProgress != 0 || st.Failed != 2 {
		t.Errorf("after cleanup = %+v", st)
	}
}

func TestStorage_Prune(t *testing.T) {
	s := newTestStorage(t)

	id, _ := s.StartJob("b", "/x", "image", "p")
	_ = s.FinishJob(id, "", "failed", "boom", 0)

	// Запись только что создана и не старше часа.
	n, err := s.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Prune(1h) = %d, want 0", n)
	}

	n, err = s.Prune(-time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune(-1h) = %d, want 1", n)
	}
}

func TestStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.sqlite")

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StartJob("b", "/x", "image", "p"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	// Миграции идемпотентны.
	s, err = New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer s.Close()

	st, err := s.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 1 {
		t.Errorf("Total = %d, want 1", st.Total)
	}
}
