package server

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func TestWatcherReportsSettledChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hall.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher([]string{path}, 50*time.Millisecond, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { changes <- struct{}{} }) }()

	// Let the watcher start before writing.
	time.Sleep(50 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"v":1}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changes:
		t.Error("a burst of writes should be reported once")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "absent", "hall.json")}, time.Millisecond, nil)
	if err == nil {
		t.Error("watching a missing directory should fail")
	}
}

func TestWatchablePaths(t *testing.T) {
	got := watchablePaths("hall.json", "https://venue.example/records.json", "mongodb://localhost", "sqlite:records.db", "")
	want := []string{"hall.json", "records.db"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("watchablePaths() mismatch (-want +got):\n%s", diff)
	}
}
