package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/devices"
	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
)

type stubAuthService struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func (s *stubAuthService) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token], nil
}

func (s *stubAuthService) SignUp(_ context.Context, email, _ string) (*models.User, error) {
	return &models.User{ID: "user-" + email, Email: email}, nil
}

func (s *stubAuthService) SignInWithPassword(context.Context, string, string) (*models.User, *models.Session, error) {
	return nil, nil, auth.ErrInvalidCredentials
}

func (s *stubAuthService) SignOut(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *stubAuthService) Subscribe() (<-chan auth.StateChange, func()) {
	ch := make(chan auth.StateChange, 8)
	return ch, func() { close(ch) }
}

type stubAdmins struct{}

func (stubAdmins) GetRole(context.Context, string) (string, error) { return "", nil }

type stubProfiles struct{}

func (stubProfiles) GetByUserID(context.Context, string) (*models.UserProfile, error) {
	return nil, nil
}
func (stubProfiles) Insert(context.Context, *models.UserProfile) error { return nil }
func (stubProfiles) Update(context.Context, *models.UserProfile) error { return nil }

type stubNotifications struct{}

func (stubNotifications) ListByUser(context.Context, string) ([]models.Notification, error) {
	return nil, nil
}
func (stubNotifications) MarkRead(context.Context, string) error    { return nil }
func (stubNotifications) MarkAllRead(context.Context, string) error { return nil }

func TestSession_RevokedTokenStopsWorking(t *testing.T) {
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	registry := devices.NewRegistry(snaps, nil, nil)

	svc := &stubAuthService{sessions: map[string]*models.Session{
		"tok": {Token: "tok", UserID: "u1", Email: "ana@example.com",
			ExpiresAt: time.Now().Add(time.Hour)},
	}}
	h := NewSessionHandler(svc, stubAdmins{}, stubProfiles{}, stubNotifications{}, registry, nil)

	r := chi.NewRouter()
	r.Get("/profile", h.GetProfile)

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, get())

	// session revoked behind the cached manager's back
	svc.mu.Lock()
	delete(svc.sessions, "tok")
	svc.mu.Unlock()

	assert.Equal(t, http.StatusUnauthorized, get())
	assert.Equal(t, http.StatusUnauthorized, get(), "eviction is permanent")
}
