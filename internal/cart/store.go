// Package cart implements the device-scoped shopping cart: an ordered
// list of line items unique by product id, with an optional cart-scoped
// coupon, persisted as a snapshot on every mutation.
package cart

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/notice"
	"github.com/bellamaterna/storefront/internal/pricing"
)

type snapshot struct {
	Items  []models.CartItem `json:"items"`
	Coupon *models.Coupon    `json:"coupon,omitempty"`
}

// Store holds one device's cart. Handlers for the same device may race;
// the mutex serializes them and the outcome is last-write-wins, same as
// concurrent tabs over shared storage.
type Store struct {
	mu     sync.Mutex
	items  []models.CartItem
	coupon *models.Coupon

	snapshots *localstore.Store
	key       string
	notifier  notice.Notifier
	logger    *slog.Logger
}

// New loads the cart snapshot for key; a missing or corrupt snapshot
// starts an empty cart.
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

// Add puts an item in the cart. An existing id accumulates quantity
// rather than duplicating the line; quantity defaults to 1.
func (s *Store) Add(item models.CartItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity += quantity
			s.persistLocked()
			s.notifier.Notify(notice.Success, fmt.Sprintf("%s adicionado ao carrinho", item.Name))
			return
		}
	}
	item.Quantity = quantity
	s.items = append(s.items, item)
	s.persistLocked()
	s.notifier.Notify(notice.Success, fmt.Sprintf("%s adicionado ao carrinho", item.Name))
}

// Remove deletes the line with the given id; missing ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) removeLocked(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			name := s.items[i].Name
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			s.notifier.Notify(notice.Info, fmt.Sprintf("%s removido do carrinho", name))
			return
		}
	}
}

// UpdateQuantity replaces the line's quantity. A quantity of zero or
// less removes the line, exactly as Remove would.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(id)
		return
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.persistLocked()
			return
		}
	}
}

// Clear empties the cart and drops the applied coupon; the coupon is
// cart-scoped, not independent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.coupon = nil
	s.persistLocked()
	s.notifier.Notify(notice.Info, "carrinho esvaziado")
}

// ApplyCoupon stores a validated coupon alongside the cart.
func (s *Store) ApplyCoupon(c *models.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = c
	s.persistLocked()
}

// RemoveCoupon clears the applied coupon unconditionally.
func (s *Store) RemoveCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = nil
	s.persistLocked()
}

// Coupon returns the applied coupon, nil when none.
func (s *Store) Coupon() *models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the cart subtotal before any coupon discount.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.CartSubtotal(s.items)
}

// Count is the sum of line quantities, not the number of distinct items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Reload re-reads the snapshot, picking up writes from another process
// sharing the state directory.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
}

func (s *Store) reloadLocked() {
	var snap snapshot
	if err := s.snapshots.Load(s.key, &snap); err != nil {
		s.items = nil
		s.coupon = nil
		return
	}
	s.items = snap.Items
	s.coupon = snap.Coupon
}

// persistLocked writes the snapshot best-effort; the in-memory cart is
// authoritative for this process, so a failed write only logs.
func (s *Store) persistLocked() {
	if err := s.snapshots.Save(s.key, snapshot{Items: s.items, Coupon: s.coupon}); err != nil {
		s.logger.Warn("cart snapshot write failed",
			slog.String("key", s.key), slog.String("error", err.Error()))
	}
}
