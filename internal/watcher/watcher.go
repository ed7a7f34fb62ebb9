// Package watcher reports debounced changes to a fixed set of files.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is how long the watcher waits for further changes
// before reporting a batch.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches files for changes. It subscribes to the parent
// directories so editors that save by rename are still seen.
type Watcher struct {
	files    map[string]bool // cleaned absolute paths
	debounce time.Duration
	onChange func(events []Event)
	logger   zerolog.Logger

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
}

// New creates a watcher for files. onChange receives each debounced batch
// of events, in arrival order.
func New(files []string, debounce time.Duration, onChange func(events []Event), logger zerolog.Logger) *Watcher {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		set[filepath.Clean(f)] = true
	}
	return &Watcher{
		files:    set,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Dirs returns the directories the watcher subscribes to, sorted.
func (w *Watcher) Dirs() []string {
	var dirs []string
	for f := range w.files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}

// Watch blocks until ctx is cancelled, reporting changes to the watched
// files through onChange.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.Dirs() {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev, ok := w.translate(event); ok {
				w.logger.Debug().Str("event", ev.Op).Str("file", ev.Path).Msg("file changed")
				w.record(ev)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

// translate maps an fsnotify event on a watched file to an Event.
func (w *Watcher) translate(event fsnotify.Event) (Event, bool) {
	path := filepath.Clean(event.Name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !w.files[path] {
		return Event{}, false
	}
	switch {
	case event.Has(fsnotify.Create):
		return Event{Path: path, Op: "create"}, true
	case event.Has(fsnotify.Write):
		return Event{Path: path, Op: "write"}, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Event{Path: path, Op: "remove"}, true
	}
	return Event{}, false
}

// record queues ev and restarts the debounce timer.
func (w *Watcher) record(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, ev)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 && w.onChange != nil {
		w.onChange(pending)
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
}
