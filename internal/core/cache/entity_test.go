package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		language  string
		params    map[string]string
		want      string
	}{
		{"no params", "sets", "en", nil, "en:sets"},
		{"empty params", "sets", "fr", map[string]string{}, "fr:sets"},
		{"single param", "set/base1", "en", map[string]string{"page": "1"}, "en:set/base1?page=1"},
		{
			name:      "params sorted by name",
			namespace: "cards",
			language:  "ja",
			params:    map[string]string{"type": "Fire", "name": "charizard", "page": "2"},
			want:      "ja:cards?name=charizard&page=2&type=Fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateKey(tt.namespace, tt.language, tt.params))
		})
	}
}

func TestGenerateKey_IndependentOfInsertionOrder(t *testing.T) {
	a := map[string]string{}
	a["rarity"] = "Rare"
	a["name"] = "pikachu"
	b := map[string]string{}
	b["name"] = "pikachu"
	b["rarity"] = "Rare"

	assert.Equal(t, GenerateKey("cards", "en", a), GenerateKey("cards", "en", b))
}

func TestEntry_IsValid(t *testing.T) {
	stored := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := &Entry{Key: "k", StoredAt: stored, TTL: time.Minute}

	assert.True(t, entry.IsValid(stored))
	assert.True(t, entry.IsValid(stored.Add(59*time.Second)))
	assert.False(t, entry.IsValid(stored.Add(time.Minute)))
}

func TestEnvelopeRoundTripKeepsMillisecondPrecision(t *testing.T) {
	stored := time.UnixMilli(1700000000123)
	raw, err := encodeEntry(&Entry{Key: "k", Value: []byte(`{"id":"base1"}`), StoredAt: stored, TTL: 90 * time.Second})
	require.NoError(t, err)

	entry, err := decodeEntry("k", raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"base1"}`), entry.Value)
	assert.True(t, stored.Equal(entry.StoredAt))
	assert.Equal(t, 90*time.Second, entry.TTL)

	_, err = decodeEntry("k", []byte("not json"))
	assert.Error(t, err)
}
