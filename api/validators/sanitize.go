package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input and drops control characters.
func SanitizeString(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(cleaned)
}
