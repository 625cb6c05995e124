package external

import (
	"context"
	"fmt"
	"testing"

	"cardbinder.app/internal/config"
	"cardbinder.app/pkg/errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockRedis creates a mock Redis server for testing
func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *config.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)

	redisConfig := &config.RedisConfig{
		Addr:         mockRedis.Addr(),
		DB:           0,
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}

	return mockRedis, redisConfig
}

func setupRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mockRedis, redisConfig := setupMockRedis(t)
	client, err := NewRedisClient(redisConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mockRedis, client
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name      string
		config    *config.RedisConfig
		errorType errors.ErrorType
	}{
		{
			name:      "NilConfig",
			config:    nil,
			errorType: errors.ErrorTypeConfiguration,
		},
		{
			name: "InvalidAddress",
			config: &config.RedisConfig{
				Addr:         "invalid:address:port",
				DialTimeout:  1,
				ReadTimeout:  1,
				WriteTimeout: 1,
			},
			errorType: errors.ErrorTypeExternalAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(tt.config)

			assert.Nil(t, client)
			var appErr *errors.AppError
			if assert.ErrorAs(t, err, &appErr) {
				assert.Equal(t, tt.errorType, appErr.Type)
			}
		})
	}

	t.Run("ValidConfig", func(t *testing.T) {
		_, cfg := setupMockRedis(t)
		client, err := NewRedisClient(cfg)
		require.NoError(t, err)
		assert.NoError(t, client.Close())
	})
}

func TestRedisStoreAdapter_Operations(t *testing.T) {
	mockRedis, client := setupRedisClient(t)

	store, err := NewRedisStoreAdapter(client)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "tcg_cache_en:sets", []byte(`{"data":"x"}`)))

		value, err := store.Get(ctx, "tcg_cache_en:sets")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"data":"x"}`), value)
		assert.Zero(t, mockRedis.TTL("tcg_cache_en:sets"), "expiry is owned by the cache envelope")
	})

	t.Run("GetNonExistentKey", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")

		var appErr *errors.AppError
		if assert.ErrorAs(t, err, &appErr) {
			assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "delete-key", []byte("v")))
		require.NoError(t, store.Delete(ctx, "delete-key"))

		_, err := store.Get(ctx, "delete-key")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("KeysScansPastOneBatch", func(t *testing.T) {
		for i := 0; i < redisScanBatch+25; i++ {
			require.NoError(t, mockRedis.Set(fmt.Sprintf("tcg_cache_fr:set/%03d", i), "v"))
		}
		require.NoError(t, mockRedis.Set("session:abc", "v"))

		keys, err := store.Keys(ctx, "tcg_cache_fr:")
		require.NoError(t, err)
		assert.Len(t, keys, redisScanBatch+25)
		for _, key := range keys {
			assert.Contains(t, key, "tcg_cache_fr:")
		}
	})

	t.Run("KeysTreatsPrefixLiterally", func(t *testing.T) {
		require.NoError(t, mockRedis.Set("cards*[1]?_en:sets", "v"))
		require.NoError(t, mockRedis.Set("cardsX1_en:sets", "v"))
		require.NoError(t, mockRedis.Set("cards_other", "v"))

		keys, err := store.Keys(ctx, "cards*[1]?_")
		require.NoError(t, err)
		assert.Equal(t, []string{"cards*[1]?_en:sets"}, keys)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})

	t.Run("ServerDown", func(t *testing.T) {
		mockRedis.Close()

		_, err := store.Get(ctx, "tcg_cache_en:sets")
		var appErr *errors.AppError
		if assert.ErrorAs(t, err, &appErr) {
			assert.Equal(t, errors.ErrorTypeCache, appErr.Type)
		}
		assert.Error(t, store.Set(ctx, "k", []byte("v")))
		_, err = store.Keys(ctx, "tcg_cache_")
		assert.Error(t, err)
	})
}

func TestNewRedisStoreAdapter_NilClient(t *testing.T) {
	store, err := NewRedisStoreAdapter(nil)
	assert.Nil(t, store)
	assert.True(t, errors.IsConfigurationError(err))
}
