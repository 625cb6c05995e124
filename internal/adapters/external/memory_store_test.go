package external

import (
	"context"
	"testing"

	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAdapter_Operations(t *testing.T) {
	store := NewMemoryStoreAdapter(0)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tcg_cache_en:sets", []byte("payload")))

		value, err := store.Get(ctx, "tcg_cache_en:sets")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), value)
	})

	t.Run("GetNonExistentKey", func(t *testing.T) {
		value, err := store.Get(ctx, "missing")
		assert.Nil(t, value)

		var appErr *errors.AppError
		if assert.ErrorAs(t, err, &appErr) {
			assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
		}
	})

	t.Run("ReturnedSliceIsACopy", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "copy", []byte("abc")))

		value, err := store.Get(ctx, "copy")
		require.NoError(t, err)
		value[0] = 'z'

		again, err := store.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "delete-me", []byte("x")))
		require.NoError(t, store.Delete(ctx, "delete-me"))

		_, err := store.Get(ctx, "delete-me")
		assert.True(t, errors.IsNotFoundError(err))
		assert.NoError(t, store.Delete(ctx, "delete-me"), "deleting a missing key is not an error")
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tcg_cache_fr:sets", []byte("1")))
		require.NoError(t, store.Set(ctx, "other_key", []byte("2")))

		keys, err := store.Keys(ctx, "tcg_cache_")
		require.NoError(t, err)
		assert.Equal(t, []string{"tcg_cache_en:sets", "tcg_cache_fr:sets"}, keys)
	})
}

func TestMemoryStoreAdapter_Quota(t *testing.T) {
	store := NewMemoryStoreAdapter(20)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key1", []byte("0123456789")))
	assert.Equal(t, 14, store.UsedBytes())

	err := store.Set(ctx, "key2", []byte("0123456789"))
	var appErr *errors.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, errors.ErrorTypeCache, appErr.Type)
	}
	_, err = store.Get(ctx, "key2")
	assert.True(t, errors.IsNotFoundError(err), "rejected write leaves nothing behind")

	require.NoError(t, store.Set(ctx, "key1", []byte("01")), "replacing with a smaller value fits")
	assert.Equal(t, 6, store.UsedBytes())

	require.NoError(t, store.Delete(ctx, "key1"))
	assert.Zero(t, store.UsedBytes())
}

func TestMemoryStoreAdapter_ValidationErrors(t *testing.T) {
	store := NewMemoryStoreAdapter(0)
	ctx := context.Background()

	tests := []struct {
		name      string
		operation func() error
	}{
		{"GetEmptyKey", func() error { _, err := store.Get(ctx, ""); return err }},
		{"SetEmptyKey", func() error { return store.Set(ctx, "", []byte("v")) }},
		{"SetNilValue", func() error { return store.Set(ctx, "k", nil) }},
		{"DeleteEmptyKey", func() error { return store.Delete(ctx, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.IsValidationError(tt.operation()))
		})
	}
}
