// Package favorites implements the wishlist: set semantics over product
// ids, same snapshot persistence and corruption policy as the cart.
package favorites

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/notice"
)

type Store struct {
	mu    sync.Mutex
	items []models.FavoriteItem

	snapshots *localstore.Store
	key       string
	notifier  notice.Notifier
	logger    *slog.Logger
}

func New(snapshots *localstore.Store, key string, notifier notice.Notifier, logger *slog.Logger) *Store {
	if notifier == nil {
		notifier = notice.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		snapshots: snapshots,
		key:       key,
		notifier:  notifier,
		logger:    logger,
	}
	s.reloadLocked()
	return s
}

// Add appends the item unless its id is already favorited; re-adding is
// a no-op, never a duplicate entry.
func (s *Store) Add(item models.FavoriteItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == item.ID {
			return
		}
	}
	s.items = append(s.items, item)
	s.persistLocked()
	s.notifier.Notify(notice.Success, fmt.Sprintf("%s adicionado aos favoritos", item.Name))
}

// Remove deletes the favorite if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Contains reports whether the id is favorited.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Items returns a copy of the favorites in insertion order.
func (s *Store) Items() []models.FavoriteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FavoriteItem, len(s.items))
	copy(out, s.items)
	return out
}

// Reload re-reads the snapshot. The session layer calls this when the
// authenticated identity changes; note the storage key stays
// device-scoped, so this is a refresh, not per-account isolation.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
}

func (s *Store) reloadLocked() {
	var items []models.FavoriteItem
	if err := s.snapshots.Load(s.key, &items); err != nil {
		s.items = nil
		return
	}
	s.items = items
}

func (s *Store) persistLocked() {
	if err := s.snapshots.Save(s.key, s.items); err != nil {
		s.logger.Warn("favorites snapshot write failed",
			slog.String("key", s.key), slog.String("error", err.Error()))
	}
}
