package database

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"cardbinder.app/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheStoreAdapter implements the KeyValueStore port on the cache_entries table
type CacheStoreAdapter struct {
	db *gorm.DB
}

func NewCacheStoreAdapter(db *gorm.DB) *CacheStoreAdapter {
	return &CacheStoreAdapter{db: db}
}

func (s *CacheStoreAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("store key cannot be empty")
	}

	var model CacheEntryModel
	result := s.db.WithContext(ctx).Where("cache_key = ?", key).First(&model)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("key not found")
		}
		return nil, errors.NewCacheError("failed to read cache entry", result.Error)
	}
	return model.Value, nil
}

func (s *CacheStoreAdapter) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("store value cannot be nil")
	}

	model := CacheEntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return errors.NewCacheError("failed to write cache entry", result.Error)
	}
	return nil
}

func (s *CacheStoreAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}

	if err := s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&CacheEntryModel{}).Error; err != nil {
		return errors.NewCacheError("failed to delete cache entry", err)
	}
	return nil
}

// Keys lists keys under prefix. LIKE wildcards in the prefix are escaped.
func (s *CacheStoreAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	result := s.db.WithContext(ctx).
		Model(&CacheEntryModel{}).
		Where(`cache_key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("cache_key").
		Pluck("cache_key", &keys)
	if result.Error != nil {
		return nil, errors.NewCacheError("failed to list cache entries", result.Error)
	}

	filtered := keys[:0]
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			filtered = append(filtered, key)
		}
	}
	return filtered, nil
}

// Ping checks that the backing database answers
func (s *CacheStoreAdapter) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.NewCacheError("failed to get database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.NewCacheError("database ping failed", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
