package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/favorites"
	"github.com/bellamaterna/storefront/internal/models"
)

type FavoritesHandler struct {
	devices *devices.Registry
}

func NewFavoritesHandler(registry *devices.Registry) *FavoritesHandler {
	return &FavoritesHandler{devices: registry}
}

func (h *FavoritesHandler) deviceFavorites(w http.ResponseWriter, r *http.Request) (*favorites.Store, bool) {
	device := r.Header.Get(DeviceHeader)
	if device == "" {
		writeError(w, http.StatusBadRequest, "missing "+DeviceHeader+" header")
		return nil, false
	}
	return h.devices.Favorites(device), true
}

// List handles GET /favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceFavorites(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": store.Items()})
}

// Add handles PUT /favorites/{id}; re-adding an id is a no-op.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceFavorites(w, r)
	if !ok {
		return
	}
	var item models.FavoriteItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	item.ID = chi.URLParam(r, "id")
	store.Add(item)
	writeJSON(w, http.StatusOK, map[string]any{"items": store.Items()})
}

// Remove handles DELETE /favorites/{id}.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceFavorites(w, r)
	if !ok {
		return
	}
	store.Remove(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"items": store.Items()})
}
