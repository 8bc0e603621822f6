package contextutils

import (
	"strings"
)

// MaskAPIKey keeps the first and last four characters of a provider key for log output.
// Keys of eight characters or fewer are masked entirely.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "[EMPTY]"
	}

	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}

	return apiKey[:4] + strings.Repeat("*", len(apiKey)-8) + apiKey[len(apiKey)-4:]
}

var inputStripper = strings.NewReplacer("<", "", ">", "", `"`, "")

// SanitizeInput removes angle brackets and double quotes from user text that is
// interpolated into prompts, then trims surrounding whitespace.
func SanitizeInput(s string) string {
	return strings.TrimSpace(inputStripper.Replace(s))
}
