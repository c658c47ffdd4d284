package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Change carries a freshly reloaded configuration or the error encountered
// while reloading it.
type Change struct {
	Config *Config
	Err    error
}

// Watcher reloads the configuration file whenever it changes on disk,
// grounded on 99souls-ariadne's HotReloadSystem (fsnotify.NewWatcher,
// a Write-event gated reload).
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	mu      sync.Mutex
}

// NewWatcher opens an fsnotify watch on the directory containing path.
// fsnotify watches the containing directory rather than the file itself
// so that editors which replace the file (write-rename) still trigger a
// Write/Create event.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dirOf(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: path, watcher: w}, nil
}

// Watch starts delivering Change values on the returned channel whenever
// the watched file is written. The channel is closed when ctx is done or
// the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) <-chan Change {
	out := make(chan Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if ev.Name != w.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(w.path)
				select {
				case out <- Change{Config: cfg, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				select {
				case out <- Change{Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close releases the underlying fsnotify watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watcher.Close()
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
