package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/repository"
)

// AdminCouponHandler is the back-office coupon CRUD. The authgate
// middleware has already established the caller is an admin.
type AdminCouponHandler struct {
	coupons *repository.CouponRepo
	logger  *slog.Logger
}

func NewAdminCouponHandler(coupons *repository.CouponRepo, logger *slog.Logger) *AdminCouponHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminCouponHandler{coupons: coupons, logger: logger}
}

type couponRequest struct {
	Code              string `json:"code"`
	DiscountType      string `json:"discount_type"`
	DiscountValue     string `json:"discount_value"`
	MinPurchaseAmount string `json:"min_purchase_amount,omitempty"`
	MaxUses           *int   `json:"max_uses,omitempty"`
	IsActive          bool   `json:"is_active"`
	StartsAt          string `json:"starts_at,omitempty"` // RFC3339
	ExpiresAt         string `json:"expires_at,omitempty"`
}

func (req couponRequest) toModel() (*models.Coupon, string) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, "code required"
	}

	kind := models.DiscountType(req.DiscountType)
	if kind != models.DiscountPercentage && kind != models.DiscountFixed {
		return nil, "discount_type must be percentage or fixed"
	}

	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil || !value.IsPositive() {
		return nil, "discount_value must be a positive number"
	}

	c := &models.Coupon{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: value,
		IsActive:      req.IsActive,
	}
	if req.MinPurchaseAmount != "" {
		min, err := decimal.NewFromString(req.MinPurchaseAmount)
		if err != nil || min.IsNegative() {
			return nil, "invalid min_purchase_amount"
		}
		c.MinPurchaseAmount = &min
	}
	if req.MaxUses != nil {
		if *req.MaxUses <= 0 {
			return nil, "max_uses must be positive"
		}
		c.MaxUses = req.MaxUses
	}
	if req.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			return nil, "invalid starts_at; use RFC3339"
		}
		c.StartsAt = &t
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, "invalid expires_at; use RFC3339"
		}
		c.ExpiresAt = &t
	}
	return c, ""
}

// Create handles POST /admin/coupons.
func (h *AdminCouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c, problem := req.toModel()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	id, err := h.coupons.Create(r.Context(), c)
	if err != nil {
		h.logger.Error("coupon create failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "coupon create failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "code": c.Code})
}

// List handles GET /admin/coupons.
func (h *AdminCouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.logger.Error("coupon list failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "coupon list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupons": coupons})
}

// Update handles PUT /admin/coupons/{id}.
func (h *AdminCouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c, problem := req.toModel()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	c.ID = id

	if err := h.coupons.Update(r.Context(), c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.logger.Error("coupon update failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "coupon update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "code": c.Code})
}

// Delete handles DELETE /admin/coupons/{id}.
func (h *AdminCouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.coupons.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.logger.Error("coupon delete failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "coupon delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
