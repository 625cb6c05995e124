package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		owned int
		total int
		want  Stats
	}{
		{name: "rounds to nearest", owned: 17, total: 50, want: Stats{Owned: 17, Total: 50, Needed: 33, CompletionPercent: 34}},
		{name: "rounds half up", owned: 1, total: 8, want: Stats{Owned: 1, Total: 8, Needed: 7, CompletionPercent: 13}},
		{name: "complete", owned: 4, total: 4, want: Stats{Owned: 4, Total: 4, Needed: 0, CompletionPercent: 100}},
		{name: "zero total", owned: 12, total: 0, want: Stats{Owned: 12, Total: 0, Needed: 0, CompletionPercent: 0}},
		{name: "more owned than total", owned: 70, total: 64, want: Stats{Owned: 70, Total: 64, Needed: 0, CompletionPercent: 109}},
		{name: "empty", owned: 0, total: 102, want: Stats{Owned: 0, Total: 102, Needed: 102, CompletionPercent: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.owned, tt.total))
		})
	}
}

func TestOwnedSet(t *testing.T) {
	set := NewOwnedSet([]string{"base1-58", "base1-4", "base1-58"})

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("base1-4"))
	assert.False(t, set.Has("base1-1"))
	assert.Equal(t, []string{"base1-4", "base1-58"}, set.IDs())

	ids := set.IDs()
	ids[0] = "mutated"
	assert.True(t, set.Has("base1-4"), "IDs returns a copy")

	var zero OwnedSet
	assert.Equal(t, 0, zero.Len())
	assert.False(t, zero.Has("base1-4"))
}

func TestCardRef_Normalize(t *testing.T) {
	card, err := CardRef{ID: " base1-4 "}.normalize()
	require.NoError(t, err)
	assert.Equal(t, CardRef{ID: "base1-4", Quantity: 1, Condition: ConditionMint}, card)

	card, err = CardRef{ID: "base1-4", Quantity: 3, Condition: ConditionLightPlayed, Notes: "1st edition"}.normalize()
	require.NoError(t, err)
	assert.Equal(t, 3, card.Quantity)
	assert.Equal(t, ConditionLightPlayed, card.Condition)

	invalid := []CardRef{
		{ID: ""},
		{ID: "../base1"},
		{ID: "base1-4", Quantity: -1},
		{ID: "base1-4", Condition: "pristine"},
	}
	for _, ref := range invalid {
		_, err := ref.normalize()
		assert.Error(t, err, "%+v", ref)
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "ready", StatusReady.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
