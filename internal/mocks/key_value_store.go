package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cardbinder.app/pkg/errors"
)

// KeyValueStore is a map-backed persisted tier with switchable failures
type KeyValueStore struct {
	mu   sync.Mutex
	data map[string][]byte

	SetErr  error
	GetErr  error
	KeysErr error
}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{data: make(map[string][]byte)}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, errors.NewNotFoundError("key not found")
	}
	return v, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.data[key] = value
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *KeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.KeysErr != nil {
		return nil, s.KeysErr
	}
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Raw returns the stored bytes without any error injection
func (s *KeyValueStore) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Put writes bytes directly, bypassing SetErr
func (s *KeyValueStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}
