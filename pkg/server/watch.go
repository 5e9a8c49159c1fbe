package server

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/seatmap/pkg/errors"
)

// Watcher reports changes to a set of files. It watches the parent
// directories rather than the files, so editors that save by renaming a
// temporary file over the original are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending bool
	last    time.Time
}

// NewWatcher watches paths. Every burst of changes is reported once, after
// debounce has passed without further events.
func NewWatcher(paths []string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		logger:   logger,
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", p)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", dir)
		}
		logger.Debug("watching directory", "dir", dir)
	}
	return w, nil
}

// Run calls onChange after each settled burst of changes until ctx is
// cancelled. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "err", err)

		case <-ticker.C:
			if w.settled() {
				w.logger.Info("source changed, reloading")
				onChange()
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.files[abs] {
		return
	}
	w.logger.Debug("source event", "op", event.Op.String(), "file", event.Name)

	w.mu.Lock()
	w.pending = true
	w.last = time.Now()
	w.mu.Unlock()
}

// settled reports, once, that a burst has gone quiet.
func (w *Watcher) settled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.last) < w.debounce {
		return false
	}
	w.pending = false
	return true
}

// watchablePaths returns the sources that are local files. URLs and store
// URIs cannot be watched.
func watchablePaths(sources ...string) []string {
	var out []string
	for _, src := range sources {
		if src == "" || errors.IsURL(src) || strings.Contains(src, "://") {
			continue
		}
		out = append(out, strings.TrimPrefix(src, "sqlite:"))
	}
	return out
}
