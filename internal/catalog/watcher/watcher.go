// Package watcher invalidates the catalog cache when the source file changes
// on disk, so edits become visible before the TTL elapses.
package watcher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/platform/logger"
)

// Watcher observes the catalog source file.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	cache   *cache.Cache
	log     *logger.Logger
}

// New creates a watcher for the given catalog file. The parent directory is
// watched because editors and exports typically replace the file.
func New(path string, c *cache.Cache, log *logger.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{watcher: w, path: path, cache: c, log: log}, nil
}

// Run processes events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("catalog source changed, marking snapshot stale", "path", w.path)
			w.cache.MarkStale()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", "error", err)
		}
	}
}
