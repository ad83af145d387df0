// Package api builds the HTTP router for the storefront service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bellamaterna/storefront/internal/api/handlers"
	"github.com/bellamaterna/storefront/internal/api/middleware"
	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/authgate"
	"github.com/bellamaterna/storefront/internal/coupon"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/repository"
)

// Deps carries everything the router wires together.
type Deps struct {
	Auth          auth.Service
	Admins        *repository.AdminRepo
	Profiles      *repository.ProfileRepo
	Notifications *repository.NotificationRepo
	Coupons       *repository.CouponRepo
	CouponSvc     *coupon.Service
	Devices       *devices.Registry
	Logger        *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics)

	cartHandler := handlers.NewCartHandler(d.Devices, d.CouponSvc, d.Logger)
	favoritesHandler := handlers.NewFavoritesHandler(d.Devices)
	sessionHandler := handlers.NewSessionHandler(d.Auth, d.Admins, d.Profiles,
		d.Notifications, d.Devices, d.Logger)
	adminCoupons := handlers.NewAdminCouponHandler(d.Coupons, d.Logger)
	gate := authgate.New(d.Auth, d.Admins, d.Logger)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{id}", cartHandler.UpdateQuantity)
		r.Delete("/items/{id}", cartHandler.RemoveItem)
		r.Post("/coupon", cartHandler.ApplyCoupon)
		r.Delete("/coupon", cartHandler.RemoveCoupon)
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", favoritesHandler.List)
		r.Put("/{id}", favoritesHandler.Add)
		r.Delete("/{id}", favoritesHandler.Remove)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", sessionHandler.SignUp)
		r.Post("/signin", sessionHandler.SignIn)
		r.Post("/signout", sessionHandler.SignOut)
		r.Get("/session", sessionHandler.GetSession)
	})

	r.Get("/profile", sessionHandler.GetProfile)
	r.Put("/profile", sessionHandler.UpdateProfile)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", sessionHandler.ListNotifications)
		r.Post("/{id}/read", sessionHandler.MarkNotificationRead)
		r.Post("/read-all", sessionHandler.MarkAllNotificationsRead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(gate.Middleware)
		r.Post("/coupons", adminCoupons.Create)
		r.Get("/coupons", adminCoupons.List)
		r.Put("/coupons/{id}", adminCoupons.Update)
		r.Delete("/coupons/{id}", adminCoupons.Delete)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
