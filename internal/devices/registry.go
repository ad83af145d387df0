// Package devices hands out the per-device cart and favorites stores.
// Each device (browser) owns one cart and one favorites snapshot; the
// registry lazily opens them and keeps them for the process lifetime.
package devices

import (
	"log/slog"
	"sync"

	"github.com/bellamaterna/storefront/internal/cart"
	"github.com/bellamaterna/storefront/internal/favorites"
	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/notice"
)

type entry struct {
	cart      *cart.Store
	favorites *favorites.Store
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	snapshots *localstore.Store
	notifier  notice.Notifier
	logger    *slog.Logger
}

func NewRegistry(snapshots *localstore.Store, notifier notice.Notifier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:   make(map[string]*entry),
		snapshots: snapshots,
		notifier:  notifier,
		logger:    logger,
	}
}

// Cart returns the device's cart store, opening it on first use.
func (r *Registry) Cart(deviceID string) *cart.Store {
	return r.get(deviceID).cart
}

// Favorites returns the device's favorites store.
func (r *Registry) Favorites(deviceID string) *favorites.Store {
	return r.get(deviceID).favorites
}

// ReloadFavorites refreshes every open favorites store; the session
// layer calls this on identity changes.
func (r *Registry) ReloadFavorites() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		e.favorites.Reload()
	}
}

func (r *Registry) get(deviceID string) *entry {
	r.mu.RLock()
	e, ok := r.entries[deviceID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[deviceID]; ok {
		return e
	}
	e = &entry{
		cart:      cart.New(r.snapshots, deviceID+"/cart", r.notifier, r.logger),
		favorites: favorites.New(r.snapshots, deviceID+"/favorites", r.notifier, r.logger),
	}

	// another process (a second "tab" on the shared state dir) may
	// rewrite these snapshots; reload so reads here stay current
	if _, err := r.snapshots.Watch(deviceID+"/cart", e.cart.Reload); err != nil {
		r.logger.Warn("cart snapshot watch failed",
			slog.String("device", deviceID), slog.String("error", err.Error()))
	}
	if _, err := r.snapshots.Watch(deviceID+"/favorites", e.favorites.Reload); err != nil {
		r.logger.Warn("favorites snapshot watch failed",
			slog.String("device", deviceID), slog.String("error", err.Error()))
	}

	r.entries[deviceID] = e
	return e
}
