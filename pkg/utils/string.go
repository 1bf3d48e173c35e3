package utils

import "unicode/utf8"

// Truncate is a simple rune-safe string truncate
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
