// Package coupon validates discount codes against the cart subtotal.
// Validation outcomes are result values with message codes; only
// backing-store failures travel as errors.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/pricing"
)

// Repo looks up active coupons by canonical (upper-case) code.
// Implementations return (nil, nil) when no active coupon matches.
type Repo interface {
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Message codes for validation outcomes.
const (
	CodeApplied     = "coupon_applied"
	CodeInvalid     = "coupon_invalid"
	CodeExpired     = "coupon_expired"
	CodeNotStarted  = "coupon_not_started"
	CodeUsageLimit  = "coupon_usage_limit"
	CodeMinPurchase = "coupon_min_purchase"
)

// Result is the outcome of an Apply call. Coupon is set only when Valid.
type Result struct {
	Valid   bool           `json:"valid"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Coupon  *models.Coupon `json:"coupon,omitempty"`
}

type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Apply validates code against the current cart subtotal. Rules run in
// order and short-circuit on the first failure: active lookup, start
// and expiry window, usage cap, minimum purchase.
func (s *Service) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	c, err := s.repo.GetActiveByCode(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("coupon lookup %q: %w", code, err)
	}
	if c == nil {
		return Result{Code: CodeInvalid, Message: "cupom inválido ou expirado"}, nil
	}

	now := s.now().UTC()
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return Result{Code: CodeExpired, Message: "cupom expirado"}, nil
	}
	if c.StartsAt != nil && c.StartsAt.After(now) {
		return Result{Code: CodeNotStarted, Message: "cupom ainda não está válido"}, nil
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return Result{Code: CodeUsageLimit, Message: "limite de uso do cupom atingido"}, nil
	}
	if c.MinPurchaseAmount != nil && subtotal.LessThan(*c.MinPurchaseAmount) {
		return Result{
			Code: CodeMinPurchase,
			Message: fmt.Sprintf("o cupom exige compra mínima de %s",
				pricing.FormatBRL(*c.MinPurchaseAmount)),
		}, nil
	}

	return Result{
		Valid:   true,
		Code:    CodeApplied,
		Message: fmt.Sprintf("cupom %s aplicado", c.Code),
		Coupon:  c,
	}, nil
}
