package diskv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcelomcd/apontador/internal/core/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store := New(base)

	require.NoError(t, store.Set(ctx, "catalog:2024-02", map[string]int{"tasks": 3}))

	_, err := os.Stat(filepath.Join(base, "catalog", "2024-02"))
	require.NoError(t, err, "key should map to <ns>/<name>")

	var got map[string]int
	require.NoError(t, New(base).Get(ctx, "catalog:2024-02", &got))
	assert.Equal(t, 3, got["tasks"])
}

func TestStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	var v string
	assert.ErrorIs(t, store.Get(ctx, "catalog:1999-01", &v), kv.ErrNotFound)

	ok, err := store.Has(ctx, "catalog:1999-01")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, "catalog:1999-01"))
}

func TestStore_ListKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, k := range []string{"catalog:2024-03", "catalog:2024-01", "other:x", "plain"} {
		require.NoError(t, store.Set(ctx, k, k))
	}

	keys, err := store.ListKeys(ctx, "catalog:")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog:2024-01", "catalog:2024-03"}, keys)

	all, err := store.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())
	require.NoError(t, store.Set(ctx, "catalog:2024-02", 1))

	require.NoError(t, store.Delete(ctx, "catalog:2024-02"))

	ok, err := store.Has(ctx, "catalog:2024-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyTransformRoundTrip(t *testing.T) {
	for _, key := range []string{"catalog:2024-02", "plain"} {
		assert.Equal(t, key, pathToKey(keyToPath(key)))
	}
}
