package store

import (
	"database/sql"
	"fmt"
	"time"

	"punchclock/internal/model"
	"punchclock/internal/store/migrations"
	"punchclock/internal/timeclock"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements timeclock.Store on SQLite. Unlike the JSON backend
// it can run the rollover's archive append and history trim in one
// transaction, closing the partial-failure window entirely.
type SQLiteStore struct {
	db *sql.DB
}

var _ timeclock.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and migrates it to
// the latest schema. path may be ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the store relies on. Exported for tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) LoadUsers() (map[string]model.User, error) {
	rows, err := s.db.Query("SELECT name, created, total_hours, next_entry_id FROM users")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]model.User)
	for rows.Next() {
		var name, created string
		var u model.User
		if err := rows.Scan(&name, &created, &u.TotalHours, &u.NextEntryID); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		if u.Created, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("user %q: %w", name, err)
		}
		users[name] = u
	}
	return users, rows.Err()
}

func (s *SQLiteStore) SaveUser(name string, u model.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (name, created, total_hours, next_entry_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			total_hours = excluded.total_hours,
			next_entry_id = excluded.next_entry_id`,
		name, formatTime(u.Created), u.TotalHours, u.NextEntryID)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(user string) (model.SessionState, error) {
	row := s.db.QueryRow(
		"SELECT status, total_time_seconds, clock_in_time, clock_in_note FROM sessions WHERE user = ?",
		user)

	var session model.SessionState
	var clockIn sql.NullString
	err := row.Scan(&session.Status, &session.TotalTimeSeconds, &clockIn, &session.ClockInNote)
	if err == sql.ErrNoRows {
		return model.SessionState{Status: model.StatusClockedOut}, nil
	}
	if err != nil {
		return model.SessionState{}, fmt.Errorf("querying session: %w", err)
	}

	if clockIn.Valid && clockIn.String != "" {
		t, err := parseTime(clockIn.String)
		if err != nil {
			return model.SessionState{}, fmt.Errorf("session for %q: %w", user, err)
		}
		session.ClockInTime = &t
	}
	return session, nil
}

func (s *SQLiteStore) SaveSession(user string, session model.SessionState) error {
	var clockIn any
	if session.ClockInTime != nil {
		clockIn = formatTime(*session.ClockInTime)
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions (user, status, total_time_seconds, clock_in_time, clock_in_note)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user) DO UPDATE SET
			status = excluded.status,
			total_time_seconds = excluded.total_time_seconds,
			clock_in_time = excluded.clock_in_time,
			clock_in_note = excluded.clock_in_note`,
		user, session.Status, session.TotalTimeSeconds, clockIn, session.ClockInNote)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadHistory(user string) ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, clock_in, clock_out, duration_seconds, date, note
		FROM entries WHERE user = ? ORDER BY id`, user)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var in, out string
		if err := rows.Scan(&e.ID, &in, &out, &e.DurationSeconds, &e.Date, &e.Note); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if e.ClockIn, err = parseTime(in); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		if e.ClockOut, err = parseTime(out); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveHistory(user string, entries []model.HistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceHistory(tx, user, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadArchive(user string) ([]model.ArchivedWeek, error) {
	rows, err := s.db.Query(`
		SELECT week_end, total_hours, entries_count, archived_at
		FROM archived_weeks WHERE user = ? ORDER BY week_end`, user)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var weeks []model.ArchivedWeek
	for rows.Next() {
		var w model.ArchivedWeek
		var archivedAt string
		if err := rows.Scan(&w.WeekEnd, &w.TotalHours, &w.EntriesCount, &archivedAt); err != nil {
			return nil, fmt.Errorf("scanning archived week: %w", err)
		}
		if w.ArchivedAt, err = parseTime(archivedAt); err != nil {
			return nil, fmt.Errorf("archived week %s: %w", w.WeekEnd, err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// ArchiveWeek appends the archive record and replaces the history in a
// single transaction.
func (s *SQLiteStore) ArchiveWeek(user string, keep []model.HistoryEntry, week model.ArchivedWeek) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO archived_weeks (user, week_end, total_hours, entries_count, archived_at)
		VALUES (?, ?, ?, ?, ?)`,
		user, week.WeekEnd, week.TotalHours, week.EntriesCount, formatTime(week.ArchivedAt))
	if err != nil {
		return fmt.Errorf("inserting archived week: %w", err)
	}

	if err := replaceHistory(tx, user, keep); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func replaceHistory(tx *sql.Tx, user string, entries []model.HistoryEntry) error {
	if _, err := tx.Exec("DELETE FROM entries WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO entries (user, id, clock_in, clock_out, duration_seconds, date, note)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user, e.ID, formatTime(e.ClockIn), formatTime(e.ClockOut), e.DurationSeconds, e.Date, e.Note)
		if err != nil {
			return fmt.Errorf("inserting entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", v, err)
	}
	return t, nil
}
