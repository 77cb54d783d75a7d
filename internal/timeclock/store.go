package timeclock

import "punchclock/internal/model"

// Store is durable keyed-by-username storage for the four collections:
// users, session state, history, and the weekly archive.
//
// Implementations must preserve other users' data on every write: saving one
// user's slice merges into the full collection rather than replacing it.
// The JSON-backed store additionally fails open on reads — a missing or
// corrupt backing file loads as an empty collection, never an error.
type Store interface {
	LoadUsers() (map[string]model.User, error)
	SaveUser(name string, u model.User) error

	LoadSession(user string) (model.SessionState, error)
	SaveSession(user string, s model.SessionState) error

	LoadHistory(user string) ([]model.HistoryEntry, error)
	SaveHistory(user string, entries []model.HistoryEntry) error

	LoadArchive(user string) ([]model.ArchivedWeek, error)

	// ArchiveWeek appends one archived week and replaces the user's history
	// with keep, as close to atomically as the backend allows. The sqlite
	// backend runs both in a single transaction; the JSON backend writes the
	// archive first so a crash in between is detectable (a duplicated week)
	// rather than silent data loss.
	ArchiveWeek(user string, keep []model.HistoryEntry, week model.ArchivedWeek) error

	Close() error
}
