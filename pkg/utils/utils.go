package utils

import (
	"fmt"
	"log"
	"strings"
	"unicode"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// TruncateWithEllipsis shortens s to max runes, appending an ellipsis when
// anything was cut.
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Capitalize upper-cases the first rune and lower-cases the remainder,
// so "RAISES" and "raises" both render as "Raises".
func Capitalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	runes := []rune(strings.ToLower(input))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func FormatPercentage(value float64) string {
	return fmt.Sprintf("%+.1f%%", value)
}

// FormatMarketCap renders a dollar value as $1.2T, $25.7B, $450.0M or $1,234.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap >= 1_000_000_000_000:
		return fmt.Sprintf("$%.1fT", marketCap/1_000_000_000_000)
	case marketCap >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", marketCap/1_000_000_000)
	case marketCap >= 1_000_000:
		return fmt.Sprintf("$%.1fM", marketCap/1_000_000)
	default:
		return fmt.Sprintf("$%.0f", marketCap)
	}
}
