package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders a duration in its largest whole unit: "45s", "12m", "3h", "2d"
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 86400 {
		return fmt.Sprintf("%dd", seconds/86400)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatAgo renders the time elapsed since t, e.g. "5m ago"
func FormatAgo(t, now time.Time) string {
	return FormatRoundedUnit(int64(now.Sub(t).Seconds())) + " ago"
}

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
