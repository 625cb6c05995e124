package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"base1", true},
		{"sv3pt5-151", true},
		{"swsh12.5", true},
		{"user:42", true},
		{"", false},
		{"-leading-dash", false},
		{"has space", false},
		{"slash/inside", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidIdentifier(tt.id))
		})
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("en"))
	assert.True(t, IsSupportedLanguage(" ZH-TW "))
	assert.False(t, IsSupportedLanguage("xx"))
	assert.False(t, IsSupportedLanguage(""))
}

func TestTrimAndValidate(t *testing.T) {
	value, ok := TrimAndValidate("  Base Set  ")
	assert.True(t, ok)
	assert.Equal(t, "Base Set", value)

	_, ok = TrimAndValidate("   ")
	assert.False(t, ok)
	assert.False(t, IsNotEmpty("\t"))
}
