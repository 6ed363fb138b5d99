// Package utils provides shared helpers for text, vectors and logging.
package utils

import "fmt"

// Truncate returns s cut to maxLen runes with "..." appended when it was longer.
// A non-positive maxLen returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// RuneLen returns the number of Unicode code points in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

// FormatBytes renders n as a human-readable size using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
