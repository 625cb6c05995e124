package database

import (
	"context"
	"testing"

	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_SetGetDelete(t *testing.T) {
	store := NewCacheStoreAdapter(setupTestDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "tcg_cache_en:sets")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, store.Set(ctx, "tcg_cache_en:sets", []byte(`{"v":1}`)))
	require.NoError(t, store.Set(ctx, "tcg_cache_en:sets", []byte(`{"v":2}`)))

	value, err := store.Get(ctx, "tcg_cache_en:sets")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), value)

	require.NoError(t, store.Delete(ctx, "tcg_cache_en:sets"))
	require.NoError(t, store.Delete(ctx, "tcg_cache_en:sets"), "deleting a missing key is not an error")

	_, err = store.Get(ctx, "tcg_cache_en:sets")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestCacheStore_KeysMatchesLiteralPrefix(t *testing.T) {
	store := NewCacheStoreAdapter(setupTestDB(t))
	ctx := context.Background()

	for _, key := range []string{"tcg_cache_b", "tcg_cache_a", "tcgXcacheXc", "other_key", "tcg_cache"} {
		require.NoError(t, store.Set(ctx, key, []byte("x")))
	}

	keys, err := store.Keys(ctx, "tcg_cache_")
	require.NoError(t, err)
	assert.Equal(t, []string{"tcg_cache_a", "tcg_cache_b"}, keys, "underscores in the prefix are not wildcards")

	all, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestCacheStore_Validation(t *testing.T) {
	store := NewCacheStoreAdapter(setupTestDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsValidationError(store.Set(ctx, "", []byte("x"))))
	assert.True(t, errors.IsValidationError(store.Set(ctx, "k", nil)))
	assert.True(t, errors.IsValidationError(store.Delete(ctx, "")))
}

func TestCacheStore_Ping(t *testing.T) {
	store := NewCacheStoreAdapter(setupTestDB(t))
	assert.NoError(t, store.Ping(context.Background()))
}
