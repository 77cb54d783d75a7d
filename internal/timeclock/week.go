package timeclock

import "time"

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns midnight on the Monday of t's week. Weeks are
// Monday-anchored: Monday is day offset 0, Sunday offset 6.
func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 { // Sunday
		offset = 7
	}
	return dateOf(t).AddDate(0, 0, -(offset - 1))
}

// weekEnd returns midnight on the Sunday closing t's week.
func weekEnd(t time.Time) time.Time {
	return weekStart(t).AddDate(0, 0, 6)
}

// sameDate reports whether a and b fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// inWeekToDate reports whether day falls in [weekStart(today), today].
// Entries dated later in the current week (manually added ahead of time)
// are excluded, matching the week-to-date totals.
func inWeekToDate(day, today time.Time) bool {
	ws := weekStart(today)
	d := dateOf(day)
	return !d.Before(ws) && !d.After(dateOf(today))
}
