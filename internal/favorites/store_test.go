package favorites

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellamaterna/storefront/internal/localstore"
	"github.com/bellamaterna/storefront/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	return New(snaps, "device/favorites", nil, nil)
}

func fav(id, name string) models.FavoriteItem {
	return models.FavoriteItem{ID: id, Name: name, Price: decimal.NewFromInt(100)}
}

func TestStore_AddIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	s.Add(fav("a", "Vestido"))
	s.Add(fav("a", "Vestido"))

	assert.Len(t, s.Items(), 1)
	assert.True(t, s.Contains("a"))
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	s.Add(fav("a", "Vestido"))
	s.Add(fav("b", "Calça"))

	s.Remove("a")
	assert.False(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))

	s.Remove("zzz") // no-op
	assert.Len(t, s.Items(), 1)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)

	s := New(snaps, "device/favorites", nil, nil)
	s.Add(fav("a", "Vestido"))

	reopened := New(snaps, "device/favorites", nil, nil)
	assert.True(t, reopened.Contains("a"))
}

func TestStore_ReloadPicksUpExternalWrite(t *testing.T) {
	snaps, err := localstore.New(t.TempDir(), nil)
	require.NoError(t, err)

	s := New(snaps, "device/favorites", nil, nil)
	require.NoError(t, snaps.Save("device/favorites", []models.FavoriteItem{fav("x", "Blusa")}))

	s.Reload()
	assert.True(t, s.Contains("x"))
}
