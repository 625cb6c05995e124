package external

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cardbinder.app/pkg/errors"
)

// MemoryStoreAdapter implements KeyValueStore port in process memory with an optional byte quota.
// It stands in for a persisted tier when no external store is configured.
type MemoryStoreAdapter struct {
	data       map[string][]byte
	mutex      sync.RWMutex
	usedBytes  int
	quotaBytes int
}

// NewMemoryStoreAdapter creates a memory store; quotaBytes <= 0 disables the quota
func NewMemoryStoreAdapter(quotaBytes int) *MemoryStoreAdapter {
	return &MemoryStoreAdapter{
		data:       make(map[string][]byte),
		quotaBytes: quotaBytes,
	}
}

func (s *MemoryStoreAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("store key cannot be empty")
	}

	s.mutex.RLock()
	value, exists := s.data[key]
	s.mutex.RUnlock()

	if !exists {
		return nil, errors.NewNotFoundError("key not found")
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, failing with a cache error when the write would exceed the quota
func (s *MemoryStoreAdapter) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("store value cannot be nil")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	used := s.usedBytes
	if old, exists := s.data[key]; exists {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)

	if s.quotaBytes > 0 && used > s.quotaBytes {
		return errors.NewCacheError(
			fmt.Sprintf("store quota exceeded: %d of %d bytes", used, s.quotaBytes), nil)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	s.usedBytes = used
	return nil
}

func (s *MemoryStoreAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("store key cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, exists := s.data[key]; exists {
		s.usedBytes -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Keys lists every key starting with prefix in lexical order
func (s *MemoryStoreAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// UsedBytes reports the bytes counted against the quota
func (s *MemoryStoreAdapter) UsedBytes() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.usedBytes
}
