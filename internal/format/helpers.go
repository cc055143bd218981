package format

import (
	"fmt"
	"math"
	"time"
)

// Percent renders a rate as a percentage with six decimals, matching
// the precision false-positive rates are reported at. NaN renders as
// "n/a" (undefined rate, e.g. no composite trials).
func Percent(rate float64) string {
	if math.IsNaN(rate) {
		return "n/a"
	}
	return fmt.Sprintf("%.6f%%", rate*100)
}

// Nanos renders a nanosecond quantity with a readable unit. Sub-10µs
// values stay in ns so the fast bulk of Fermat trials keeps full
// precision.
func Nanos(ns float64) string {
	if math.IsNaN(ns) {
		return "n/a"
	}
	d := time.Duration(ns)
	switch {
	case d < 10*time.Microsecond:
		return fmt.Sprintf("%.0fns", ns)
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", ns/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", ns/1e6)
	default:
		return fmt.Sprintf("%.3fs", ns/1e9)
	}
}

// Count renders a count with K/M suffix for readability in wide tables.
func Count(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000.0)
	}
	if n >= 10_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%d", n)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
