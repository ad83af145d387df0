package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/repository"
)

// SessionTTL is how long a sign-in stays valid.
const SessionTTL = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

// PostgresService implements Service over the users and auth_sessions
// tables.
type PostgresService struct {
	repo   *repository.AuthRepo
	events *broadcaster
	logger *slog.Logger
	now    func() time.Time
}

func NewPostgresService(repo *repository.AuthRepo, logger *slog.Logger) *PostgresService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresService{
		repo:   repo,
		events: newBroadcaster(),
		logger: logger,
		now:    time.Now,
	}
}

func (s *PostgresService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || sess.ExpiresAt.Before(s.now()) {
		return nil, nil
	}
	return sess, nil
}

func (s *PostgresService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

func (s *PostgresService) SignInWithPassword(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, hash, err := s.repo.GetUserWithHash(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.repo.CreateSession(ctx, user.ID, user.Email, s.now().Add(SessionTTL))
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	s.events.publish(StateChange{Event: EventSignedIn, Token: sess.Token, Session: sess})
	return user, sess, nil
}

func (s *PostgresService) SignOut(ctx context.Context, token string) error {
	err := s.repo.DeleteSession(ctx, token)
	// the event fires regardless so local state downstream always clears
	s.events.publish(StateChange{Event: EventSignedOut, Token: token})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresService) Subscribe() (<-chan StateChange, func()) {
	return s.events.subscribe()
}
