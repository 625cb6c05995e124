package cache

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const (
	DefaultCapacity      = 100
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
	DefaultNamespace     = "tcg_cache_"
)

// Entry is one cached value. Entries are never mutated; Set replaces them.
type Entry struct {
	Key      string
	Value    []byte
	StoredAt time.Time
	TTL      time.Duration
}

// IsValid reports whether the entry is still fresh at now
func (e *Entry) IsValid(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.TTL
}

// Stats is a read-only snapshot of tier sizes
type Stats struct {
	MemoryCount    int `json:"memoryCount"`
	PersistedCount int `json:"persistedCount"`
	Capacity       int `json:"capacity"`
}

// envelope is the persisted-tier representation of an Entry
type envelope struct {
	Data     []byte `json:"data"`
	StoredAt int64  `json:"storedAt"`
	TTL      int64  `json:"ttl"`
}

func encodeEntry(e *Entry) ([]byte, error) {
	return json.Marshal(envelope{
		Data:     e.Value,
		StoredAt: e.StoredAt.UnixMilli(),
		TTL:      e.TTL.Milliseconds(),
	})
}

func decodeEntry(key string, raw []byte) (*Entry, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &Entry{
		Key:      key,
		Value:    env.Data,
		StoredAt: time.UnixMilli(env.StoredAt),
		TTL:      time.Duration(env.TTL) * time.Millisecond,
	}, nil
}

// GenerateKey builds "{language}:{namespace}?k1=v1&k2=v2" with parameter names sorted,
// so the same logical query always maps to the same key. The query suffix is omitted
// when params is empty.
func GenerateKey(namespace, language string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(language)
	b.WriteByte(':')
	b.WriteString(namespace)

	if len(params) == 0 {
		return b.String()
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}
