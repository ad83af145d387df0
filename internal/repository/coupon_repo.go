package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponColumns = `id, code, discount_type, discount_value, min_purchase_amount,
       max_uses, current_uses, is_active, starts_at, expires_at, created_at, updated_at`

// GetActiveByCode fetches the active coupon with the exact (upper-case)
// code. Returns (nil, nil) when no active coupon matches.
func (r *CouponRepo) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM discount_coupons WHERE code = $1 AND is_active = true`, couponColumns)

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// List returns all coupons for the back-office, newest first.
func (r *CouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM discount_coupons ORDER BY created_at DESC`, couponColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) (int, error) {
	query := `
		INSERT INTO discount_coupons
		(code, discount_type, discount_value, min_purchase_amount, max_uses,
		 current_uses, is_active, starts_at, expires_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,0,$6,$7,$8,NOW(),NOW())
		RETURNING id
	`
	var id int
	err := r.db.QueryRowContext(ctx, query,
		c.Code,
		string(c.DiscountType),
		c.DiscountValue.String(),
		nullDecimal(c.MinPurchaseAmount),
		nullInt(c.MaxUses),
		c.IsActive,
		nullTimeValue(c.StartsAt),
		nullTimeValue(c.ExpiresAt),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) error {
	query := `
		UPDATE discount_coupons
		SET code = $2, discount_type = $3, discount_value = $4,
		    min_purchase_amount = $5, max_uses = $6, is_active = $7,
		    starts_at = $8, expires_at = $9, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Code,
		string(c.DiscountType),
		c.DiscountValue.String(),
		nullDecimal(c.MinPurchaseAmount),
		nullInt(c.MaxUses),
		c.IsActive,
		nullTimeValue(c.StartsAt),
		nullTimeValue(c.ExpiresAt),
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

func (r *CouponRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discount_coupons WHERE id = $1`, id)
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

// IncrementUsage bumps current_uses for a completed order that used the
// coupon. Called by the order-event ingester, not the shop flow.
func (r *CouponRepo) IncrementUsage(ctx context.Context, code string) error {
	query := `
		UPDATE discount_coupons
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE code = $1
	`
	res, err := r.db.ExecContext(ctx, query, code)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		c            models.Coupon
		discountType string
		value        string
		minPurchase  sql.NullString
		maxUses      sql.NullInt64
		startsAt     sql.NullTime
		expiresAt    sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&discountType,
		&value,
		&minPurchase,
		&maxUses,
		&c.CurrentUses,
		&c.IsActive,
		&startsAt,
		&expiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DiscountType = models.DiscountType(discountType)
	c.DiscountValue, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("bad discount_value for coupon %d: %w", c.ID, err)
	}
	if minPurchase.Valid {
		d, err := decimal.NewFromString(minPurchase.String)
		if err != nil {
			return nil, fmt.Errorf("bad min_purchase_amount for coupon %d: %w", c.ID, err)
		}
		c.MinPurchaseAmount = &d
	}
	if maxUses.Valid {
		v := int(maxUses.Int64)
		c.MaxUses = &v
	}
	if startsAt.Valid {
		t := startsAt.Time
		c.StartsAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTimeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
