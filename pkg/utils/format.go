// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Truncate shortens text to at most limit characters, appending an
// ellipsis when something was cut. Counts runes, not bytes, so multi-byte
// characters never get split mid-sequence.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// FormatPrice formats a price with two decimal places.
func FormatPrice(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// JoinSymbols renders a symbol list for display.
func JoinSymbols(symbols []string) string {
	return strings.Join(symbols, ", ")
}
