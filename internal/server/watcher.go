package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"powermap/internal/logging"
)

// Watcher monitors the data directory and re-runs the join after source
// changes. Rapid saves are debounced so one editor write-and-rename does
// not trigger two rebuilds.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dataDir  string
	debounce time.Duration
	rebuild  func() error
	timer    *time.Timer
	running  bool
	doneCh   chan struct{}

	// Stats for tests and the serve log.
	Events   int
	Rebuilds int
	Errors   int
}

// NewWatcher creates a watcher over dataDir that calls rebuild after each
// debounced batch of source changes.
func NewWatcher(dataDir string, debounce time.Duration, rebuild func() error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fsw,
		dataDir:  dataDir,
		debounce: debounce,
		rebuild:  rebuild,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addRecursive(w.dataDir); err != nil {
		return err
	}

	go w.loop(ctx)
	return nil
}

// addRecursive registers root and every directory under it. fsnotify
// watches are non-recursive, and the join's inputs live in
// subdirectories like data/sources and data/issues.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	log := logging.Get(logging.CategoryServe)
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						log.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !isSourcePath(event.Name) {
				continue
			}
			w.mu.Lock()
			w.Events++
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, func() {
				w.mu.Lock()
				stopped := !w.running
				w.mu.Unlock()
				if stopped {
					return
				}
				log.Info("source changed (%s), rebuilding", event.Name)
				if err := w.rebuild(); err != nil {
					log.Error("rebuild failed: %v", err)
					w.mu.Lock()
					w.Errors++
					w.mu.Unlock()
					return
				}
				w.mu.Lock()
				w.Rebuilds++
				w.mu.Unlock()
			})
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error: %v", err)
			w.mu.Lock()
			w.Errors++
			w.mu.Unlock()
		}
	}
}

// StatsSnapshot returns the counters under the lock.
func (w *Watcher) StatsSnapshot() (events, rebuilds, errors int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Events, w.Rebuilds, w.Errors
}

// Stop halts watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.doneCh
	return err
}
