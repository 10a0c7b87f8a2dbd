// Package watch reloads the open document when its file changes on disk.
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming over the original keep
// delivering events. Rapid saves are debounced before the reload fires.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the re-read document text once changes settle.
type ReloadFunc func(path, text string)

// Stats tracks watcher activity for debugging.
type Stats struct {
	Events    int
	Reloads   int
	Errors    int
	LastEvent time.Time
}

// Watcher monitors a single document file.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	reload      ReloadFunc
	logger      *log.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a watcher for the document at path. The reload callback runs
// on the watcher goroutine after writes to the file settle.
func New(path string, reload ReloadFunc, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		watcher:     fsw,
		path:        abs,
		reload:      reload,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; events are handled on a goroutine
// until Stop is called or the context ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching document", "path", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", "err", err)
	}
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processSettled()
		}
	}
}

// handleEvent records an event on the watched document for later processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEvent = time.Now()
	w.debounceMap[w.path] = time.Now()
	w.mu.Unlock()
}

// processSettled fires the reload for events older than the debounce window.
func (w *Watcher) processSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				w.logger.Warn("document removed", "path", path)
				continue
			}
			w.logger.Error("reading document", "path", path, "err", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			continue
		}

		w.mu.Lock()
		w.stats.Reloads++
		w.mu.Unlock()
		w.logger.Info("document changed on disk", "path", path, "bytes", len(content))
		w.reload(path, string(content))
	}
}
