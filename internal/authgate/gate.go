// Package authgate guards the back-office routes: only authenticated
// admins pass. The decision itself is a pure predicate over session
// state; the middleware resolves the state first so a still-loading
// session is never prematurely denied.
package authgate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/session"
)

type contextKey struct{}

// Allow is the gate predicate: authenticated and admin, never while
// still loading.
func Allow(state session.State) bool {
	return state.Status == session.StatusAuthenticated && state.IsAdmin
}

// Gate resolves bearer tokens to sessions and enforces the admin role.
type Gate struct {
	auth   auth.Service
	admins session.AdminRepo
	logger *slog.Logger
}

func New(authSvc auth.Service, admins session.AdminRepo, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{auth: authSvc, admins: admins, logger: logger}
}

// Middleware denies with 401 when there is no live session and 403 when
// the session's user is not an admin. The admin's user id is placed on
// the request context for handlers downstream.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}

		sess, err := g.auth.GetSession(r.Context(), token)
		if err != nil {
			g.logger.Error("session resolution failed", slog.String("error", err.Error()))
			http.Error(w, "session lookup failed", http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}

		role, err := g.admins.GetRole(r.Context(), sess.UserID)
		if err != nil {
			g.logger.Error("admin role lookup failed",
				slog.String("user_id", sess.UserID), slog.String("error", err.Error()))
			http.Error(w, "role lookup failed", http.StatusInternalServerError)
			return
		}
		if role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminID returns the admin user id stored by the middleware.
func AdminID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
