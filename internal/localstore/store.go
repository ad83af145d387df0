// Package localstore persists JSON snapshots of client-side state
// (cart, favorites, applied coupon) under a state directory, one file
// per key. It is a best-effort cache, not a source of truth: a missing
// or unparseable snapshot degrades to "not found" so callers start from
// empty state instead of failing.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Load when the key has no usable snapshot.
var ErrNotFound = errors.New("localstore: snapshot not found")

type Store struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Load reads the snapshot for key into v. Absent and corrupt snapshots
// both yield ErrNotFound; corruption is logged and the stale file left
// in place until the next Save overwrites it.
func (s *Store) Load(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		s.logger.Warn("snapshot read failed, starting empty",
			slog.String("key", key), slog.String("error", err.Error()))
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding corrupt snapshot",
			slog.String("key", key), slog.String("error", err.Error()))
		return ErrNotFound
	}
	return nil
}

// Save writes the snapshot atomically (temp file + rename) so a reader
// in another process never observes a partial write.
func (s *Store) Save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %q: %w", key, err)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key. Absence is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json")
}
