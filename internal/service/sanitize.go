package service

import (
	"strings"
)

const (
	MaxNameLength     = 200
	MaxSymptomsLength = 5000
	MinSymptomsLength = 3
)

// Sanitize strips ASCII control characters (0x00-0x1F, 0x7F), trims surrounding
// whitespace and truncates to maxLength runes. Applying it twice yields the same
// result as applying it once.
func Sanitize(s string, maxLength int) string {
	stripped := strings.Map(func(r rune) rune {
		if r <= 0x1F || r == 0x7F {
			return -1
		}
		return r
	}, s)

	stripped = strings.TrimSpace(stripped)

	runes := []rune(stripped)
	if len(runes) > maxLength {
		// Truncation can expose trailing whitespace
		stripped = strings.TrimSpace(string(runes[:maxLength]))
	}

	return stripped
}
