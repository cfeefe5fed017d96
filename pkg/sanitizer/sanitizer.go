package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace
// runs to single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeCityKey produces the canonical key used for metro-multiplier
// lookups: trimmed, whitespace-collapsed, lower-cased. Lookups are
// deliberately case-insensitive.
func NormalizeCityKey(city string) string {
	return strings.ToLower(TrimAndNormalize(city))
}

// NormalizeNotes cleans free-text customer notes without altering case.
func NormalizeNotes(notes string) string {
	return TrimAndNormalize(notes)
}

// NormalizeID trims identifier-shaped inputs.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
