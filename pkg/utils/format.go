package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	starFull  = "★"
	starHalf  = "⯨"
	starEmpty = "☆"
	starCount = 5
)

// RenderStars renders an average rating as five star glyphs.
// The average is rounded to the nearest half star and clamped to [0, 5].
func RenderStars(average float64) string {
	halves := int(math.Round(average * 2))
	halves = max(0, min(halves, starCount*2))

	full := halves / 2
	half := halves % 2

	var b strings.Builder
	b.WriteString(strings.Repeat(starFull, full))
	b.WriteString(strings.Repeat(starHalf, half))
	b.WriteString(strings.Repeat(starEmpty, starCount-full-half))

	return b.String()
}

// TrustPercentage returns the share of positive counts in percent.
// ok is false when both counts are zero and the ratio is undefined.
func TrustPercentage(positive, negative int64) (float64, bool) {
	total := positive + negative
	if total <= 0 {
		return 0, false
	}

	return float64(positive) / float64(total) * 100, true
}

// FormatTrust renders a trust percentage, or N/A when it is undefined.
func FormatTrust(positive, negative int64) string {
	pct, ok := TrustPercentage(positive, negative)
	if !ok {
		return "N/A"
	}

	return fmt.Sprintf("%.1f%%", pct)
}

// CeilMinutes rounds a duration up to whole minutes.
// Any positive duration yields at least one minute.
func CeilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	return int((d + time.Minute - 1) / time.Minute)
}

// FormatMinutes renders a whole number of minutes with the right plural.
func FormatMinutes(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}

	return fmt.Sprintf("%d minutes", minutes)
}

// FormatWait renders a remaining wait as whole minutes, rounded up.
// Long waits such as a day-long feedback cooldown stay in minutes too.
func FormatWait(d time.Duration) string {
	return FormatMinutes(CeilMinutes(d))
}
