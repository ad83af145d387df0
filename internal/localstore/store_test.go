package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	in := payload{Name: "vestido gestante", Count: 3}
	require.NoError(t, s.Save("device-1/cart", in))

	var out payload
	require.NoError(t, s.Load("device-1/cart", &out))
	assert.Equal(t, in, out)
}

func TestStore_MissingKey(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	var out payload
	assert.ErrorIs(t, s.Load("nope", &out), ErrNotFound)
}

func TestStore_CorruptSnapshotDiscarded(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{not json"), 0o644))

	var out payload
	assert.ErrorIs(t, s.Load("cart", &out), ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Save("coupon", payload{Name: "MAMAE10"}))
	require.NoError(t, s.Delete("coupon"))
	require.NoError(t, s.Delete("coupon")) // absence is fine

	var out payload
	assert.ErrorIs(t, s.Load("coupon", &out), ErrNotFound)
}
