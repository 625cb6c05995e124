package validation

import (
	"regexp"
	"strings"
)

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

	supportedLanguages = map[string]bool{
		"en": true, "fr": true, "es": true, "it": true, "pt": true,
		"de": true, "ja": true, "zh-tw": true, "id": true, "th": true,
	}
)

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// IsValidIdentifier accepts catalog and storage identifiers such as "sv3pt5-151" or "base1"
func IsValidIdentifier(id string) bool {
	return identifierRegex.MatchString(id)
}

// NormalizeLanguage lowercases and trims a language tag
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// IsSupportedLanguage reports whether the catalog serves the language tag
func IsSupportedLanguage(lang string) bool {
	return supportedLanguages[NormalizeLanguage(lang)]
}
