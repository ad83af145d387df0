// Package pricing holds the pure price arithmetic for the storefront:
// effective unit price, cart subtotal, coupon discount and installment
// values. All functions are total over well-typed inputs and never
// return an error.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/models"
)

// InstallmentMonthlyRate is the fixed monthly fee applied to purchases
// split into more than one installment (1.99% per month).
const InstallmentMonthlyRate = 0.0199

var oneHundred = decimal.NewFromInt(100)

// EffectivePrice returns the charged unit price, applying the
// promotional > sale > regular waterfall. Unset prices are nil; a zero
// value present in a field is honored as a real price.
func EffectivePrice(item models.CartItem) decimal.Decimal {
	if item.PromoPrice != nil {
		return *item.PromoPrice
	}
	if item.SalePrice != nil {
		return *item.SalePrice
	}
	return item.Price
}

// LineTotal is the effective unit price times the line quantity.
func LineTotal(item models.CartItem) decimal.Decimal {
	return EffectivePrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CartSubtotal sums line totals. An empty cart yields zero.
func CartSubtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item))
	}
	return subtotal
}

// DiscountAmount computes the discount a coupon grants on a subtotal.
// A nil coupon, or a subtotal below the coupon's minimum purchase,
// yields zero. Fixed discounts are capped at the subtotal so the net
// total never goes negative.
func DiscountAmount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	if coupon.MinPurchaseAmount != nil && subtotal.LessThan(*coupon.MinPurchaseAmount) {
		return decimal.Zero
	}
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		return subtotal.Mul(coupon.DiscountValue).Div(oneHundred)
	case models.DiscountFixed:
		if coupon.DiscountValue.GreaterThan(subtotal) {
			return subtotal
		}
		return coupon.DiscountValue
	}
	return decimal.Zero
}

// InstallmentValue returns the per-payment amount when a total is split
// into n monthly installments under the fixed fee rate. One installment
// (or fewer) carries no fee and returns the amount unchanged, which
// also guards the n=0 case against division by zero.
func InstallmentValue(amount decimal.Decimal, installments int) decimal.Decimal {
	if installments <= 1 {
		return amount
	}
	r := InstallmentMonthlyRate
	compound := math.Pow(1+r, float64(installments))
	factor := r * compound / (compound - 1)
	return amount.Mul(decimal.NewFromFloat(factor))
}
