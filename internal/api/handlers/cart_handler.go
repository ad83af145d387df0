package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/cart"
	"github.com/bellamaterna/storefront/internal/coupon"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/pricing"
)

// DeviceHeader identifies the client device; carts and favorites are
// scoped to it, not to the signed-in account.
const DeviceHeader = "X-Device-ID"

type CartHandler struct {
	devices *devices.Registry
	coupons *coupon.Service
	logger  *slog.Logger
}

func NewCartHandler(registry *devices.Registry, coupons *coupon.Service, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{devices: registry, coupons: coupons, logger: logger}
}

type addItemRequest struct {
	Item     models.CartItem `json:"item"`
	Quantity int             `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type installmentView struct {
	Count int    `json:"count"`
	Value string `json:"value"`
	Label string `json:"label"`
}

type cartView struct {
	Items        []models.CartItem `json:"items"`
	Coupon       *models.Coupon    `json:"coupon,omitempty"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	Discount     decimal.Decimal   `json:"discount"`
	Total        decimal.Decimal   `json:"total"`
	Count        int               `json:"count"`
	Installments *installmentView  `json:"installments,omitempty"`
}

func (h *CartHandler) deviceCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	device := r.Header.Get(DeviceHeader)
	if device == "" {
		writeError(w, http.StatusBadRequest, "missing "+DeviceHeader+" header")
		return nil, false
	}
	return h.devices.Cart(device), true
}

// GetCart handles GET /cart. An optional ?installments=N query adds the
// per-installment value for displaying "N× de R$ X" labels.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}

	view := h.viewOf(store)
	if raw := r.URL.Query().Get("installments"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid installments")
			return
		}
		value := pricing.InstallmentValue(view.Total, n)
		view.Installments = &installmentView{
			Count: n,
			Value: value.StringFixed(2),
			Label: strconv.Itoa(n) + "x de " + pricing.FormatBRL(value),
		}
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Item.ID == "" {
		writeError(w, http.StatusBadRequest, "item id required")
		return
	}
	store.Add(req.Item, req.Quantity)
	writeJSON(w, http.StatusOK, h.viewOf(store))
}

// UpdateQuantity handles PUT /cart/items/{id}; quantity zero or below
// removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	store.UpdateQuantity(chi.URLParam(r, "id"), req.Quantity)
	writeJSON(w, http.StatusOK, h.viewOf(store))
}

// RemoveItem handles DELETE /cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	store.Remove(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.viewOf(store))
}

// ClearCart handles DELETE /cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	store.Clear()
	writeJSON(w, http.StatusOK, h.viewOf(store))
}

// ApplyCoupon handles POST /cart/coupon. Validation failures come back
// as 200 with valid=false so the client can show the inline message.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := h.coupons.Apply(r.Context(), req.Code, store.Total())
	if err != nil {
		h.logger.Error("coupon lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "coupon lookup failed")
		return
	}
	if result.Valid {
		store.ApplyCoupon(result.Coupon)
	}
	writeJSON(w, http.StatusOK, result)
}

// RemoveCoupon handles DELETE /cart/coupon; always succeeds.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	store, ok := h.deviceCart(w, r)
	if !ok {
		return
	}
	store.RemoveCoupon()
	writeJSON(w, http.StatusOK, h.viewOf(store))
}

func (h *CartHandler) viewOf(store *cart.Store) cartView {
	items := store.Items()
	subtotal := pricing.CartSubtotal(items)
	discount := pricing.DiscountAmount(store.Coupon(), subtotal)
	return cartView{
		Items:    items,
		Coupon:   store.Coupon(),
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
		Count:    store.Count(),
	}
}
