package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/session"
)

// SessionHandler owns one session.Manager per live token, mirroring the
// one-manager-per-page lifecycle of the storefront client.
type SessionHandler struct {
	auth          auth.Service
	admins        session.AdminRepo
	profiles      session.ProfileRepo
	notifications session.NotificationRepo
	devices       *devices.Registry
	logger        *slog.Logger

	mu       sync.Mutex
	managers map[string]*session.Manager
}

func NewSessionHandler(authSvc auth.Service, admins session.AdminRepo,
	profiles session.ProfileRepo, notifications session.NotificationRepo,
	registry *devices.Registry, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		auth:          authSvc,
		admins:        admins,
		profiles:      profiles,
		notifications: notifications,
		devices:       registry,
		logger:        logger,
		managers:      make(map[string]*session.Manager),
	}
}

type signUpRequest struct {
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Profile  models.UserProfile `json:"profile"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /auth/signup.
func (h *SessionHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	m := h.newManager("")
	defer m.Close()
	if err := m.SignUp(r.Context(), req.Email, req.Password, req.Profile); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("sign up failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "sign up failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "account created"})
}

// SignIn handles POST /auth/signin; the response carries the session
// token and the fully derived state.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m := h.newManager("")
	if err := m.SignIn(r.Context(), req.Email, req.Password); err != nil {
		m.Close()
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("sign in failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "sign in failed")
		return
	}

	token := m.Token()
	h.mu.Lock()
	h.managers[token] = m
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"state": m.State(),
	})
}

// SignOut handles POST /auth/signout. Local state clears regardless of
// the backing outcome.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	m := h.takeManager(token)
	if m == nil {
		m = h.newManager(token)
	}
	err := m.SignOut(r.Context())
	m.Close()
	if err != nil {
		h.logger.Warn("backing sign-out failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// GetSession handles GET /auth/session, restoring a manager for tokens
// issued before a restart.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeJSON(w, http.StatusOK, session.State{Status: session.StatusUnauthenticated})
		return
	}
	writeJSON(w, http.StatusOK, m.State())
}

// GetProfile handles GET /profile.
func (h *SessionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, m.State().Profile)
}

// UpdateProfile handles PUT /profile.
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := m.UpdateProfile(r.Context(), profile); err != nil {
		h.logger.Error("profile update failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "profile update failed")
		return
	}
	writeJSON(w, http.StatusOK, m.State().Profile)
}

// ListNotifications handles GET /notifications.
func (h *SessionHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": m.State().Notifications})
}

// MarkNotificationRead handles POST /notifications/{id}/read.
func (h *SessionHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if err := m.MarkNotificationAsRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("mark notification failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "mark notification failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// MarkAllNotificationsRead handles POST /notifications/read-all.
func (h *SessionHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	m, ok := h.managerFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if err := m.MarkAllNotificationsAsRead(r.Context()); err != nil {
		h.logger.Error("mark notifications failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "mark notifications failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *SessionHandler) newManager(token string) *session.Manager {
	opts := []session.Option{
		session.WithIdentityChangeHook(h.devices.ReloadFavorites),
	}
	if token != "" {
		opts = append(opts, session.WithToken(token))
	}
	return session.NewManager(h.auth, h.admins, h.profiles, h.notifications, h.logger, opts...)
}

// managerFor resolves the bearer token to a live manager, initializing
// one for restored tokens. Returns false when the token has no session.
// Cached managers are re-checked against the backing store on each
// request: the auth_sessions row may have expired or been deleted out
// of band, and the cache must not outlive it.
func (h *SessionHandler) managerFor(r *http.Request) (*session.Manager, bool) {
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}

	h.mu.Lock()
	m, ok := h.managers[token]
	h.mu.Unlock()
	if ok {
		sess, err := h.auth.GetSession(r.Context(), token)
		if err != nil {
			h.logger.Error("session check failed", slog.String("error", err.Error()))
			return nil, false
		}
		if sess == nil {
			h.evict(token, m)
			return nil, false
		}
		return m, true
	}

	m = h.newManager(token)
	m.Init(r.Context())
	if m.State().Status != session.StatusAuthenticated {
		m.Close()
		return nil, false
	}

	h.mu.Lock()
	if existing, ok := h.managers[token]; ok {
		h.mu.Unlock()
		// lost the race to a concurrent request for the same token
		m.Close()
		return existing, true
	}
	h.managers[token] = m
	h.mu.Unlock()
	return m, true
}

func (h *SessionHandler) evict(token string, m *session.Manager) {
	h.mu.Lock()
	if h.managers[token] == m {
		delete(h.managers, token)
	}
	h.mu.Unlock()
	m.Close()
}

func (h *SessionHandler) takeManager(token string) *session.Manager {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.managers[token]
	delete(h.managers, token)
	return m
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
