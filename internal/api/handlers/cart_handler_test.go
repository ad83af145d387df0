package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellamaterna/storefront/internal/coupon"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
)

type stubCouponRepo struct {
	coupons map[string]*models.Coupon
}

func (s *stubCouponRepo) GetActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	return s.coupons[code], nil
}

func newCartTestRouter(t *testing.T) http.Handler {
	t.Helper()
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	registry := devices.NewRegistry(snaps, nil, nil)

	ten := decimal.NewFromInt(10)
	svc := coupon.NewService(&stubCouponRepo{coupons: map[string]*models.Coupon{
		"MAMAE10": {Code: "MAMAE10", IsActive: true,
			DiscountType: models.DiscountPercentage, DiscountValue: ten},
	}})

	h := NewCartHandler(registry, svc, nil)
	r := chi.NewRouter()
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{id}", h.UpdateQuantity)
	r.Delete("/cart/items/{id}", h.RemoveItem)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/coupon", h.ApplyCoupon)
	r.Delete("/cart/coupon", h.RemoveCoupon)
	return r
}

func doCart(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(DeviceHeader, "device-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCartFlow(t *testing.T) {
	router := newCartTestRouter(t)

	rec := doCart(t, router, http.MethodPost, "/cart/items",
		`{"item":{"id":"a","name":"Vestido","price":"100"},"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeCart(t, rec)
	assert.Equal(t, "200", view["subtotal"])
	assert.Equal(t, float64(2), view["count"])

	// apply a 10% coupon
	rec = doCart(t, router, http.MethodPost, "/cart/coupon", `{"code":"mamae10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeCart(t, rec)
	assert.Equal(t, true, result["valid"])

	rec = doCart(t, router, http.MethodGet, "/cart", "")
	view = decodeCart(t, rec)
	assert.Equal(t, "20", view["discount"])
	assert.Equal(t, "180", view["total"])

	// removing the coupon restores the full total
	rec = doCart(t, router, http.MethodDelete, "/cart/coupon", "")
	view = decodeCart(t, rec)
	assert.Equal(t, "0", view["discount"])
	assert.Equal(t, "200", view["total"])

	// quantity zero removes the line
	rec = doCart(t, router, http.MethodPut, "/cart/items/a", `{"quantity":0}`)
	view = decodeCart(t, rec)
	assert.Empty(t, view["items"])
}

func TestCart_MissingDeviceHeader(t *testing.T) {
	router := newCartTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_InstallmentsQuery(t *testing.T) {
	router := newCartTestRouter(t)
	doCart(t, router, http.MethodPost, "/cart/items",
		`{"item":{"id":"a","name":"Vestido","price":"1000"},"quantity":1}`)

	rec := doCart(t, router, http.MethodGet, "/cart?installments=12", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Installments *struct {
			Count int    `json:"count"`
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"installments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.Installments)
	assert.Equal(t, 12, view.Installments.Count)
	assert.Contains(t, view.Installments.Label, "12x de R$")
}
