package model

import "time"

// Session status values as persisted in the session document.
const (
	StatusClockedIn  = "clocked_in"
	StatusClockedOut = "clocked_out"
)

// SessionState is the live clock state for one user. At most one exists per
// user and it is only ever overwritten, never deleted. ClockInTime and
// ClockInNote are set iff Status is clocked_in.
type SessionState struct {
	Status           string     `json:"status"`
	TotalTimeSeconds float64    `json:"total_time_seconds"`
	ClockInTime      *time.Time `json:"clock_in_time,omitempty"`
	ClockInNote      string     `json:"clock_in_note,omitempty"`
}

// ClockedIn reports whether the user is currently clocked in.
func (s SessionState) ClockedIn() bool { return s.Status == StatusClockedIn }

// HistoryEntry is one completed work session. Entries are immutable once
// appended, except for note edits; the rollover operation removes entries it
// has archived.
type HistoryEntry struct {
	ClockIn         time.Time `json:"clock_in"`
	ClockOut        time.Time `json:"clock_out"`
	DurationSeconds float64   `json:"duration_seconds"`
	Date            string    `json:"date"` // clock_in's calendar date, YYYY-MM-DD
	Note            string    `json:"note"`
	ID              int64     `json:"id"`
}

// Duration returns the stored duration.
func (e HistoryEntry) Duration() time.Duration {
	return time.Duration(e.DurationSeconds * float64(time.Second))
}

// ArchivedWeek summarizes one completed week moved out of live history by the
// rollover operation. Append-only per user.
type ArchivedWeek struct {
	WeekEnd      string    `json:"week_end"` // Sunday closing the week, YYYY-MM-DD
	TotalHours   float64   `json:"total_hours"`
	EntriesCount int       `json:"entries_count"`
	ArchivedAt   time.Time `json:"archived_date"`
}

// User is an account record. The display name is the primary key across all
// collections and lives in the document key, not here. NextEntryID is the
// per-user sequence counter for history entries; it survives rollovers so
// entry ids stay monotonic even after archived entries are removed.
type User struct {
	Created     time.Time `json:"created"`
	TotalHours  float64   `json:"total_hours"` // lifetime hours moved to the archive
	NextEntryID int64     `json:"next_entry_id"`
}
