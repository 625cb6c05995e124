package external

import (
	"context"
	"strings"
	"time"

	"cardbinder.app/internal/config"
	"cardbinder.app/pkg/errors"
	"github.com/go-redis/redis/v8"
)

const redisScanBatch = 100

// RedisStoreAdapter implements KeyValueStore port using Redis
type RedisStoreAdapter struct {
	client *redis.Client
}

// NewRedisClient dials Redis and verifies the connection
func NewRedisClient(config *config.RedisConfig) (*redis.Client, error) {
	if config == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  time.Duration(config.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewExternalAPIError("failed to connect to Redis", err)
	}

	return client, nil
}

// NewRedisStoreAdapter creates a Redis-backed store over an existing client
func NewRedisStoreAdapter(client *redis.Client) (*RedisStoreAdapter, error) {
	if client == nil {
		return nil, errors.NewConfigurationError("redis client cannot be nil", nil)
	}
	return &RedisStoreAdapter{client: client}, nil
}

// Get retrieves a value from Redis
func (r *RedisStoreAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("store key cannot be empty")
	}

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("key not found")
		}
		return nil, errors.NewCacheError("redis get operation failed", err)
	}

	return val, nil
}

// Set stores a value in Redis without expiry; entry freshness is tracked by the cache envelope
func (r *RedisStoreAdapter) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("store value cannot be nil")
	}

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.NewCacheError("redis set operation failed", err)
	}

	return nil
}

// Delete removes a value from Redis
func (r *RedisStoreAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.NewCacheError("redis delete operation failed", err)
	}

	return nil
}

// Keys walks the keyspace with SCAN and returns every key under prefix.
// SCAN may report a key more than once; each key is returned once.
func (r *RedisStoreAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		result []string
		cursor uint64
	)
	seen := make(map[string]struct{})
	pattern := escapeGlob(prefix) + "*"

	for {
		var keys []string
		var err error

		keys, cursor, err = r.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return nil, errors.NewCacheError("redis scan operation failed", err)
		}
		for _, key := range keys {
			if _, dup := seen[key]; dup || !strings.HasPrefix(key, prefix) {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, key)
		}

		if cursor == 0 {
			break
		}
	}

	return result, nil
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax
func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(s)
}

// Ping checks if Redis connection is alive
func (r *RedisStoreAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewCacheError("Redis ping failed", err)
	}
	return nil
}
