package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

func TestWatcher_Dirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "api")

	w := New([]string{
		filepath.Join(sub, "asyncapi.yaml"),
		filepath.Join(dir, "asyncgen.config.json"),
		filepath.Join(sub, "other.yaml"),
		"",
	}, DefaultDebounce, nil, zerolog.Nop())

	dirs := w.Dirs()
	if len(dirs) != 2 {
		t.Fatalf("expected 2 dirs, got %v", dirs)
	}
	if dirs[0] != dir || dirs[1] != sub {
		t.Errorf("unexpected dirs: %v", dirs)
	}
}

func TestWatcher_Translate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "asyncapi.yaml")
	w := New([]string{input}, DefaultDebounce, nil, zerolog.Nop())

	tests := []struct {
		name   string
		event  fsnotify.Event
		wantOp string
		wantOK bool
	}{
		{"write", fsnotify.Event{Name: input, Op: fsnotify.Write}, "write", true},
		{"create", fsnotify.Event{Name: input, Op: fsnotify.Create}, "create", true},
		{"remove", fsnotify.Event{Name: input, Op: fsnotify.Remove}, "remove", true},
		{"rename", fsnotify.Event{Name: input, Op: fsnotify.Rename}, "remove", true},
		{"chmod", fsnotify.Event{Name: input, Op: fsnotify.Chmod}, "", false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "Order.cs"), Op: fsnotify.Write}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := w.translate(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("translate ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (ev.Op != tt.wantOp || ev.Path != input) {
				t.Errorf("translate = %+v, want op %q path %q", ev, tt.wantOp, input)
			}
		})
	}
}

func TestWatcher_Debounce(t *testing.T) {
	var (
		mu      sync.Mutex
		batches [][]Event
	)
	done := make(chan struct{}, 1)
	w := New(nil, 50*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
		done <- struct{}{}
	}, zerolog.Nop())

	w.record(Event{Path: "a", Op: "write"})
	w.record(Event{Path: "a", Op: "write"})
	w.record(Event{Path: "b", Op: "create"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0]) != 3 || batches[0][2].Path != "b" {
		t.Errorf("unexpected batch: %+v", batches[0])
	}
}

func TestWatcher_WatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "asyncapi.yaml")
	if err := os.WriteFile(input, []byte("asyncapi: 2.6.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan []Event, 4)
	w := New([]string{input}, 20*time.Millisecond, func(events []Event) {
		got <- events
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// Give the watcher time to subscribe before writing.
	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644)
	os.WriteFile(input, []byte("asyncapi: 2.6.0\ninfo: {}\n"), 0644)

	select {
	case events := <-got:
		for _, ev := range events {
			if filepath.Base(ev.Path) != "asyncapi.yaml" {
				t.Errorf("unexpected event for %s", ev.Path)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}
