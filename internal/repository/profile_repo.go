package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bellamaterna/storefront/internal/models"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByUserID returns (nil, nil) when the user has no profile row yet;
// absence is a normal negative result for the role derivation.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT id, name, email, avatar_url, street, city, state, postal_code,
		       birth_date, created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`
	var (
		p         models.UserProfile
		avatar    sql.NullString
		street    sql.NullString
		city      sql.NullString
		state     sql.NullString
		postal    sql.NullString
		birthDate sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.Name, &p.Email, &avatar, &street, &city, &state, &postal,
		&birthDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.AvatarURL = avatar.String
	p.Street = street.String
	p.City = city.String
	p.State = state.String
	p.PostalCode = postal.String
	if birthDate.Valid {
		t := birthDate.Time
		p.BirthDate = &t
	}
	return &p, nil
}

func (r *ProfileRepo) Insert(ctx context.Context, p *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles
		(id, name, email, avatar_url, street, city, state, postal_code, birth_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Email,
		nullString(p.AvatarURL), nullString(p.Street), nullString(p.City),
		nullString(p.State), nullString(p.PostalCode),
		nullTimeValue(p.BirthDate),
	)
	return err
}

// Update returns ErrNotFound when no profile row exists so the caller
// can fall back to Insert.
func (r *ProfileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET name = $2, email = $3, avatar_url = $4, street = $5, city = $6,
		    state = $7, postal_code = $8, birth_date = $9, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Email,
		nullString(p.AvatarURL), nullString(p.Street), nullString(p.City),
		nullString(p.State), nullString(p.PostalCode),
		nullTimeValue(p.BirthDate),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
