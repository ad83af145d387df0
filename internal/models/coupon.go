package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount code as stored in discount_coupons. Codes are
// canonically upper-case. Optional constraints are nil when not set.
type Coupon struct {
	ID                int              `json:"id"`
	Code              string           `json:"code"`
	DiscountType      DiscountType     `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	MaxUses           *int             `json:"max_uses,omitempty"`
	CurrentUses       int              `json:"current_uses"`
	IsActive          bool             `json:"is_active"`
	StartsAt          *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt         *time.Time       `json:"expires_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
