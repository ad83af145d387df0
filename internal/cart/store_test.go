package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
	"github.com/bellamaterna/storefront/internal/notice"
)

type captureNotifier struct {
	messages []string
}

func (c *captureNotifier) Notify(_ notice.Level, message string) {
	c.messages = append(c.messages, message)
}

func newTestStore(t *testing.T) (*Store, *localstore.Store) {
	t.Helper()
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	return New(snaps, "device/cart", &captureNotifier{}, nil), snaps
}

func item(id, name string, price string) models.CartItem {
	return models.CartItem{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestStore_AddAccumulatesQuantity(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(item("a", "Vestido Amamentação", "100"), 1)
	s.Add(item("a", "Vestido Amamentação", "100"), 2)

	items := s.Items()
	require.Len(t, items, 1, "same id must not duplicate the line")
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, s.Count())
}

func TestStore_CountVersusDistinct(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(item("a", "Calça", "80"), 2)
	s.Add(item("b", "Blusa", "60"), 5)

	assert.Len(t, s.Items(), 2)
	assert.Equal(t, 7, s.Count())
}

func TestStore_AddDefaultsQuantityToOne(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(item("a", "Saia", "70"), 0)
	assert.Equal(t, 1, s.Count())
}

func TestStore_UpdateQuantityZeroRemoves(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(item("a", "Vestido", "100"), 2)

	s.UpdateQuantity("a", 0)
	assert.Empty(t, s.Items())

	s.Add(item("a", "Vestido", "100"), 2)
	s.UpdateQuantity("a", -5)
	assert.Empty(t, s.Items())
}

func TestStore_UpdateQuantityReplaces(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(item("a", "Vestido", "100"), 2)

	s.UpdateQuantity("a", 5)
	assert.Equal(t, 5, s.Items()[0].Quantity)
}

func TestStore_Total(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(item("a", "Vestido", "100"), 2)
	assert.True(t, s.Total().Equal(decimal.NewFromInt(200)))
}

func TestStore_ClearDropsCoupon(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(item("a", "Vestido", "100"), 1)
	s.ApplyCoupon(&models.Coupon{Code: "MAMAE10", DiscountType: models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10)})

	s.Clear()
	assert.Empty(t, s.Items())
	assert.Nil(t, s.Coupon(), "coupon is cart-scoped and must clear with it")
}

func TestStore_RemoveCoupon(t *testing.T) {
	s, _ := newTestStore(t)
	s.ApplyCoupon(&models.Coupon{Code: "MAMAE10"})
	s.RemoveCoupon()
	assert.Nil(t, s.Coupon())
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)

	s := New(snaps, "device/cart", nil, nil)
	s.Add(item("a", "Vestido", "100"), 2)
	s.ApplyCoupon(&models.Coupon{Code: "MAMAE10", DiscountType: models.DiscountFixed,
		DiscountValue: decimal.NewFromInt(15)})

	reopened := New(snaps, "device/cart", nil, nil)
	require.Len(t, reopened.Items(), 1)
	assert.Equal(t, 2, reopened.Items()[0].Quantity)
	require.NotNil(t, reopened.Coupon())
	assert.Equal(t, "MAMAE10", reopened.Coupon().Code)
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	snaps, err := localstore.New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "device"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "device", "cart.json"), []byte("!!"), 0o644))

	s := New(snaps, "device/cart", nil, nil)
	assert.Empty(t, s.Items())
	assert.Nil(t, s.Coupon())
}

func TestStore_AddEmitsNotice(t *testing.T) {
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	n := &captureNotifier{}
	s := New(snaps, "device/cart", n, nil)

	s.Add(item("a", "Vestido Gestante Luna", "100"), 1)
	require.NotEmpty(t, n.messages)
	assert.Contains(t, n.messages[0], "Vestido Gestante Luna")
}
