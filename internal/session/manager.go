// Package session tracks one client's authentication state: the live
// session, derived role flags, the profile row and recent
// notifications. A Manager is an explicit instance with Init/Close, not
// an ambient singleton, so tests build isolated ones.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bellamaterna/storefront/internal/auth"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/notice"
)

type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is a snapshot of the derived session state. By the time Status
// is authenticated, role flags, profile and notifications are already
// populated.
type State struct {
	Status        Status                `json:"status"`
	User          *models.User          `json:"user,omitempty"`
	Session       *models.Session       `json:"session,omitempty"`
	IsAdmin       bool                  `json:"is_admin"`
	IsCustomer    bool                  `json:"is_customer"`
	Profile       *models.UserProfile   `json:"profile,omitempty"`
	Notifications []models.Notification `json:"notifications,omitempty"`
}

// AdminRepo resolves the admin role; "" means not an admin.
type AdminRepo interface {
	GetRole(ctx context.Context, userID string) (string, error)
}

// ProfileRepo accesses user_profiles. GetByUserID returns (nil, nil)
// for users without a profile row.
type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Insert(ctx context.Context, p *models.UserProfile) error
	Update(ctx context.Context, p *models.UserProfile) error
}

// NotificationRepo accesses the user's notification list.
type NotificationRepo interface {
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type Manager struct {
	auth          auth.Service
	admins        AdminRepo
	profiles      ProfileRepo
	notifications NotificationRepo
	notifier      notice.Notifier
	logger        *slog.Logger

	// onIdentityChange fires after a sign-in or sign-out transition;
	// the shop wires favorite-store reloads through it.
	onIdentityChange func()

	mu          sync.Mutex
	state       State
	token       string
	unsubscribe func()
}

type Option func(*Manager)

// WithToken restores a previously issued session token, the way a page
// reload restores the persisted session.
func WithToken(token string) Option {
	return func(m *Manager) { m.token = token }
}

// WithNotifier routes user-facing notices (error toasts) somewhere.
func WithNotifier(n notice.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithIdentityChangeHook registers a callback for identity transitions.
func WithIdentityChangeHook(fn func()) Option {
	return func(m *Manager) { m.onIdentityChange = fn }
}

func NewManager(authSvc auth.Service, admins AdminRepo, profiles ProfileRepo,
	notifications NotificationRepo, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		auth:          authSvc,
		admins:        admins,
		profiles:      profiles,
		notifications: notifications,
		notifier:      notice.Discard{},
		logger:        logger,
		state:         State{Status: StatusUninitialized},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores the current session (if any) and subscribes to auth
// state changes for the manager's lifetime. A backing failure degrades
// to unauthenticated with one error notice instead of a stuck loading
// state.
func (m *Manager) Init(ctx context.Context) {
	m.setStatus(StatusLoading)

	sess, err := m.auth.GetSession(ctx, m.token)
	if err != nil {
		m.logger.Error("session restore failed", slog.String("error", err.Error()))
		m.notifier.Notify(notice.Error, "não foi possível restaurar a sessão")
		m.clearState()
	} else if sess != nil {
		m.derive(ctx, sess)
	} else {
		m.clearState()
	}

	m.subscribe()
}

// subscribe starts consuming auth events. Idempotent, so a manager
// that went through both Init and SignIn holds one subscription.
func (m *Manager) subscribe() {
	m.mu.Lock()
	if m.unsubscribe != nil {
		m.mu.Unlock()
		return
	}
	events, unsubscribe := m.auth.Subscribe()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	go func() {
		for change := range events {
			m.handleChange(change)
		}
	}()
}

// handleChange reacts to broadcast auth events. The bus carries every
// client's sign-ins and sign-outs, so changes for other sessions are
// dropped: adopting a foreign SIGNED_IN would hand this manager
// another user's identity.
func (m *Manager) handleChange(change auth.StateChange) {
	switch change.Event {
	case auth.EventSignedIn:
		if change.Session == nil {
			return
		}
		m.mu.Lock()
		sess := m.state.Session
		m.mu.Unlock()
		if sess == nil || sess.UserID != change.Session.UserID {
			return
		}
		// Same account signed in elsewhere (another tab or device):
		// refresh the derived state, keeping this manager's own session.
		m.derive(context.Background(), sess)
	case auth.EventSignedOut:
		m.mu.Lock()
		mine := m.token != "" && change.Token == m.token
		m.mu.Unlock()
		if mine {
			m.clearState()
		}
	}
}

// Close unsubscribes from auth events.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns a snapshot; the notification slice is copied.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.state
	snapshot.Notifications = append([]models.Notification(nil), m.state.Notifications...)
	return snapshot
}

// Token returns the current session token, "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// SignUp creates the auth principal and then the profile row. A profile
// insert failure is logged but does not roll the principal back; the
// profile is created lazily on the first UpdateProfile instead.
func (m *Manager) SignUp(ctx context.Context, email, password string, profile models.UserProfile) error {
	user, err := m.auth.SignUp(ctx, email, password)
	if err != nil {
		return err
	}

	profile.ID = user.ID
	profile.Email = user.Email
	if err := m.profiles.Insert(ctx, &profile); err != nil {
		m.logger.Error("profile creation after sign-up failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
	return nil
}

// SignIn authenticates and runs the full derivation sequence before
// returning, so callers observing success already see roles, profile
// and notifications.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.setStatus(StatusLoading)

	_, sess, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.clearState()
		return err
	}
	m.derive(ctx, sess)
	m.subscribe()
	return nil
}

// SignOut always clears local state, even when the backing call fails;
// the caller still gets the backing error.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	err := m.auth.SignOut(ctx, token)
	m.clearState()
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// UpdateProfile persists profile changes, inserting the row when it
// does not exist yet. The local snapshot updates only after the backing
// call succeeds.
func (m *Manager) UpdateProfile(ctx context.Context, profile models.UserProfile) error {
	m.mu.Lock()
	user := m.state.User
	m.mu.Unlock()
	if user == nil {
		return fmt.Errorf("update profile: not signed in")
	}

	profile.ID = user.ID
	err := m.profiles.Update(ctx, &profile)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		if err := m.profiles.Insert(ctx, &profile); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.state.Profile = &profile
	m.state.IsCustomer = true
	m.mu.Unlock()
	return nil
}

// MarkNotificationAsRead flips the read flag in the backing store and
// then locally. No rollback if a later read shows otherwise.
func (m *Manager) MarkNotificationAsRead(ctx context.Context, id string) error {
	if err := m.notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.state.Notifications {
		if m.state.Notifications[i].ID == id {
			m.state.Notifications[i].Read = true
			break
		}
	}
	return nil
}

func (m *Manager) MarkAllNotificationsAsRead(ctx context.Context) error {
	m.mu.Lock()
	user := m.state.User
	m.mu.Unlock()
	if user == nil {
		return fmt.Errorf("mark notifications: not signed in")
	}

	if err := m.notifications.MarkAllRead(ctx, user.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.state.Notifications {
		m.state.Notifications[i].Read = true
	}
	return nil
}

// derive runs the strictly sequential post-auth fetches: admin role,
// profile (presence doubles as the customer flag), notifications. Role
// absences are negative results, not errors; real backing errors leave
// the affected field empty and log.
func (m *Manager) derive(ctx context.Context, sess *models.Session) {
	user := &models.User{ID: sess.UserID, Email: sess.Email}

	role, err := m.admins.GetRole(ctx, user.ID)
	if err != nil {
		m.logger.Error("admin role lookup failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		role = ""
	}

	profile, err := m.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		m.logger.Error("profile fetch failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		profile = nil
	}

	notifications, err := m.notifications.ListByUser(ctx, user.ID)
	if err != nil {
		m.logger.Error("notification fetch failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		notifications = nil
	}

	m.mu.Lock()
	m.token = sess.Token
	m.state = State{
		Status:        StatusAuthenticated,
		User:          user,
		Session:       sess,
		IsAdmin:       role != "",
		IsCustomer:    profile != nil,
		Profile:       profile,
		Notifications: notifications,
	}
	m.mu.Unlock()

	if m.onIdentityChange != nil {
		m.onIdentityChange()
	}
}

func (m *Manager) clearState() {
	m.mu.Lock()
	m.token = ""
	m.state = State{Status: StatusUnauthenticated}
	m.mu.Unlock()

	if m.onIdentityChange != nil {
		m.onIdentityChange()
	}
}

func (m *Manager) setStatus(status Status) {
	m.mu.Lock()
	m.state.Status = status
	m.mu.Unlock()
}
