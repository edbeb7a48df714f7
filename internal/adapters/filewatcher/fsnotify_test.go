package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_EmitsOnDocumentChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSNotifyWatcher(nil)
	if err != nil {
		t.Fatalf("creating watcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	path := filepath.Join(dir, "baru.txt")
	if err := os.WriteFile(path, []byte("dokumen baru"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Path != path {
			t.Errorf("event path %q, want %q", ev.Path, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event for new document")
	}
}

func TestWatch_UnsupportedDirectory(t *testing.T) {
	w, err := NewFSNotifyWatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "tidak-ada")); err == nil {
		t.Error("watching a missing directory must fail")
	}
}

func TestIsWatched(t *testing.T) {
	w, err := NewFSNotifyWatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cases := map[string]bool{
		"/docs/a.txt":      true,
		"/docs/b.PDF":      true,
		"/docs/c.md":       true,
		"/docs/d.bin":      false,
		"/docs/noext":      false,
		"/docs/archive.gz": false,
	}
	for path, want := range cases {
		if got := w.isWatched(path); got != want {
			t.Errorf("isWatched(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFSNotifyWatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}
