package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestYAMLSourceReadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("literals:\n  severe: [badword]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewYAMLSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Fatalf("Path() = %q", s.Path())
	}

	entries, err := s.Entries(context.Background())
	if err != nil || len(entries.Literals) != 1 {
		t.Fatalf("Entries = %+v, %v", entries, err)
	}

	if err := os.WriteFile(path, []byte("literals:\n  severe: [badword, worse]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err = s.Entries(context.Background())
	if err != nil || len(entries.Literals) != 2 {
		t.Fatalf("Entries after edit = %+v, %v", entries, err)
	}
}

func TestYAMLSourceErrors(t *testing.T) {
	if _, err := NewYAMLSource(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
	s, err := NewYAMLSource(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Entries(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Entries(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestWatchReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("literals:\n  severe: [badword]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewYAMLSource(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, WatchOptions{Debounce: 10 * time.Millisecond}, func() {
			changed <- struct{}{}
		})
	}()

	// The watcher may not be registered yet, so keep touching the file
	// until a change is reported.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-changed:
			break wait
		case <-tick.C:
			if err := os.WriteFile(path, []byte("literals:\n  severe: [badword, worse]\n"), 0o600); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Watch returned %v", err)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	s, err := NewYAMLSource(filepath.Join(t.TempDir(), "nope", "vocab.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Watch(context.Background(), WatchOptions{}, func() {}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
