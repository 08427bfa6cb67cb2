package present

import (
	"fmt"
	"time"
)

const (
	// ScrollTopThreshold is the offset in px above which scroll-to-top shows
	ScrollTopThreshold = 200
	// CopyConfirmDuration is how long the "copied" state stays visible
	CopyConfirmDuration = 2 * time.Second
)

// FormatPercent renders v with one decimal place, e.g. "66.7%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatCharCount renders a character count with one decimal place, e.g. "912.0자".
func FormatCharCount(v float64) string {
	return fmt.Sprintf("%.1f자", v)
}

// FormatChars renders an integer character count, e.g. "540자".
func FormatChars(n int) string {
	return fmt.Sprintf("%d자", n)
}

// FormatScore renders a score over its denominator, e.g. "7/10".
func FormatScore(score, denom int) string {
	return fmt.Sprintf("%d/%d", score, denom)
}

// FormatSimilarity renders a 0-100 similarity score, clamped to that range.
func FormatSimilarity(v float64) string {
	return FormatPercent(min(max(v, 0), 100))
}

// CountBadge renders a count as "n개".
func CountBadge(n int) string {
	return fmt.Sprintf("%d개", n)
}
