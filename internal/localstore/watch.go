package localstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invokes fn whenever the snapshot for key is rewritten by
// another writer (a second server process sharing the state directory,
// the moral equivalent of a second browser tab racing the same storage
// key). The returned stop function releases the watcher.
func (s *Store) Watch(key string, fn func()) (stop func(), err error) {
	path := s.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("snapshot watcher error",
					slog.String("key", key), slog.String("error", err.Error()))
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
