package timeclock

import (
	"fmt"
	"time"
)

// FormatClock renders a duration as zero-padded HH:MM:SS. Sub-second
// remainders are truncated, never rounded.
func FormatClock(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatHoursDecimal renders a duration as decimal hours with one fractional
// digit, e.g. "7.5".
func FormatHoursDecimal(d time.Duration) string {
	return fmt.Sprintf("%.1f", d.Seconds()/3600)
}

// FormatHoursMinutes renders a duration as "{H}h {M}m" using floor division.
// Minutes are the remainder after whole hours; there is no rounding or carry.
func FormatHoursMinutes(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatDecimalHoursMinutes renders an archived decimal-hours total as
// "{H}h {M}m", e.g. 7.75 -> "7h 45m".
func FormatDecimalHoursMinutes(hours float64) string {
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%dh %dm", h, m)
}
