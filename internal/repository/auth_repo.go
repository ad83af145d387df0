package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bellamaterna/storefront/internal/models"
)

type AuthRepo struct {
	db *sql.DB
}

func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

func (r *AuthRepo) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1,$2,$3,NOW())`,
		id, email, passwordHash)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: email}, nil
}

// GetUserByEmail returns (nil, nil) when the email is unregistered.
func (r *AuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM users WHERE email = $1`, email).Scan(&u.ID, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserWithHash fetches the user plus password hash for sign-in.
func (r *AuthRepo) GetUserWithHash(ctx context.Context, email string) (*models.User, string, error) {
	var (
		u    models.User
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, hash, nil
}

func (r *AuthRepo) CreateSession(ctx context.Context, userID, email string, expiresAt time.Time) (*models.Session, error) {
	sess := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token, user_id, expires_at, created_at) VALUES ($1,$2,$3,$4)`,
		sess.Token, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession returns (nil, nil) for unknown tokens; expiry is enforced
// by the auth service.
func (r *AuthRepo) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	query := `
		SELECT s.token, s.user_id, u.email, s.expires_at, s.created_at
		FROM auth_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&s.Token, &s.UserID, &s.Email, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *AuthRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = $1`, token)
	return err
}
