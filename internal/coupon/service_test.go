package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellamaterna/storefront/internal/models"
)

type fakeRepo struct {
	coupons   map[string]*models.Coupon
	err       error
	lastCode  string
	callCount int
}

func (f *fakeRepo) GetActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	f.lastCode = code
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.coupons[code], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *fakeRepo) *Service {
	s := NewService(repo)
	s.now = fixedNow
	return s
}

func TestApply_NormalizesCodeToUpper(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{}}
	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), "  mamae10 ", dec("100"))
	require.NoError(t, err)
	assert.Equal(t, "MAMAE10", repo.lastCode)
}

func TestApply_NotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{coupons: map[string]*models.Coupon{}})

	res, err := svc.Apply(context.Background(), "NADA", dec("100"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeInvalid, res.Code)
}

func TestApply_Expired(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{
		"VELHO": {
			Code: "VELHO", IsActive: true,
			DiscountType: models.DiscountPercentage, DiscountValue: dec("10"),
			ExpiresAt: timePtr(fixedNow().Add(-time.Hour)),
		},
	}}
	res, err := newTestService(repo).Apply(context.Background(), "VELHO", dec("100"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeExpired, res.Code)
}

func TestApply_NotYetStarted(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{
		"FUTURO": {
			Code: "FUTURO", IsActive: true,
			DiscountType: models.DiscountFixed, DiscountValue: dec("10"),
			StartsAt: timePtr(fixedNow().Add(time.Hour)),
		},
	}}
	res, err := newTestService(repo).Apply(context.Background(), "FUTURO", dec("100"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeNotStarted, res.Code)
}

func TestApply_UsageLimitReached(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{
		"ESGOTADO": {
			Code: "ESGOTADO", IsActive: true,
			DiscountType: models.DiscountPercentage, DiscountValue: dec("10"),
			MaxUses: intPtr(5), CurrentUses: 5,
		},
	}}
	res, err := newTestService(repo).Apply(context.Background(), "ESGOTADO", dec("100"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeUsageLimit, res.Code)
}

func TestApply_MinPurchaseMessageCarriesFormattedAmount(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{
		"GRANDE": {
			Code: "GRANDE", IsActive: true,
			DiscountType: models.DiscountPercentage, DiscountValue: dec("10"),
			MinPurchaseAmount: decPtr("300"),
		},
	}}
	res, err := newTestService(repo).Apply(context.Background(), "GRANDE", dec("200"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeMinPurchase, res.Code)
	assert.Contains(t, res.Message, "R$ 300,00")
}

func TestApply_Success(t *testing.T) {
	repo := &fakeRepo{coupons: map[string]*models.Coupon{
		"MAMAE10": {
			Code: "MAMAE10", IsActive: true,
			DiscountType: models.DiscountPercentage, DiscountValue: dec("10"),
			MinPurchaseAmount: decPtr("100"),
			MaxUses:           intPtr(100), CurrentUses: 3,
		},
	}}
	res, err := newTestService(repo).Apply(context.Background(), "mamae10", dec("200"))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, CodeApplied, res.Code)
	require.NotNil(t, res.Coupon)
	assert.Equal(t, "MAMAE10", res.Coupon.Code)
}

func TestApply_LookupErrorPropagates(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection refused")}
	_, err := newTestService(repo).Apply(context.Background(), "QUALQUER", dec("100"))
	assert.Error(t, err)
}
