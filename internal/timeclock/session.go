package timeclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"punchclock/internal/model"
)

// ClockInResult reports a successful clock-in.
type ClockInResult struct {
	At   time.Time
	Note string
}

// ClockOutResult reports a successful clock-out.
type ClockOutResult struct {
	At      time.Time
	Session time.Duration
	Entry   model.HistoryEntry
}

// ClockIn starts a work session. It fails with ErrAlreadyClockedIn if the
// user is already clocked in, leaving state unchanged. The pending note is
// truncated to 20 words and held until clock-out.
func (s *Service) ClockIn(user, note string) (*ClockInResult, error) {
	if _, err := s.ensureUser(user); err != nil {
		return nil, err
	}

	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.ClockedIn() {
		return nil, ErrAlreadyClockedIn
	}

	now := s.clock.Now()
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	session = model.SessionState{
		Status:           model.StatusClockedIn,
		TotalTimeSeconds: completedTodaySeconds(history, now),
		ClockInTime:      &now,
		ClockInNote:      TruncateNote(note),
	}
	if err := s.store.SaveSession(user, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("clocked in", "user", user, "at", now)
	return &ClockInResult{At: now, Note: session.ClockInNote}, nil
}

// ClockOut ends the current work session and appends a history entry. It
// fails with ErrAlreadyClockedOut if the user is not clocked in; nothing is
// appended on rejection. The entry note combines the stored clock-in note
// and the clock-out note, truncated to 20 words.
func (s *Service) ClockOut(user, note string) (*ClockOutResult, error) {
	u, err := s.ensureUser(user)
	if err != nil {
		return nil, err
	}

	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !session.ClockedIn() || session.ClockInTime == nil {
		return nil, ErrAlreadyClockedOut
	}

	now := s.clock.Now()
	clockIn := *session.ClockInTime
	if now.Before(clockIn) {
		// Clock skew left the stored clock-in in the future. Close the
		// session with zero duration rather than recording a negative one.
		s.logger.Warn("clock-in time is in the future, clamping session to zero",
			"user", user, "clock_in", clockIn, "now", now)
		now = clockIn
	}

	combined := TruncateNote(combineNotes(session.ClockInNote, TruncateNote(note)))
	entry, err := s.appendEntry(user, &u, clockIn, now, combined)
	if err != nil {
		return nil, err
	}

	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	session = model.SessionState{
		Status:           model.StatusClockedOut,
		TotalTimeSeconds: completedTodaySeconds(history, now),
	}
	if err := s.store.SaveSession(user, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("clocked out", "user", user, "session", now.Sub(clockIn), "entry", entry.ID)
	return &ClockOutResult{At: now, Session: now.Sub(clockIn), Entry: entry}, nil
}

// AddMissedEntry records a forgotten session after the fact. The date is
// YYYY-MM-DD and times are 24-hour HH:MM (a single-digit hour is accepted).
// Clock-out must be after clock-in and must not be in the future.
func (s *Service) AddMissedEntry(user, date, inTime, outTime, note string) (model.HistoryEntry, error) {
	u, err := s.ensureUser(user)
	if err != nil {
		return model.HistoryEntry{}, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, s.clock.Now().Location())
	if err != nil {
		return model.HistoryEntry{}, validationErrorf("invalid date %q: use YYYY-MM-DD", date)
	}

	inH, inM, err := parseClockTime(inTime)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	outH, outM, err := parseClockTime(outTime)
	if err != nil {
		return model.HistoryEntry{}, err
	}

	clockIn := day.Add(time.Duration(inH)*time.Hour + time.Duration(inM)*time.Minute)
	clockOut := day.Add(time.Duration(outH)*time.Hour + time.Duration(outM)*time.Minute)

	if !clockOut.After(clockIn) {
		return model.HistoryEntry{}, validationErrorf("clock out must be after clock in")
	}
	if clockOut.After(s.clock.Now()) {
		return model.HistoryEntry{}, validationErrorf("cannot clock out beyond the current time")
	}

	entry, err := s.appendEntry(user, &u, clockIn, clockOut, TruncateNote(note))
	if err != nil {
		return model.HistoryEntry{}, err
	}

	s.logger.Info("missed entry added", "user", user, "entry", entry.ID, "duration", clockOut.Sub(clockIn))
	return entry, nil
}

// EditNote replaces the note on an existing history entry, identified by its
// sequence id. The 20-word cap still applies.
func (s *Service) EditNote(user string, entryID int64, note string) error {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	for i := range history {
		if history[i].ID == entryID {
			history[i].Note = TruncateNote(note)
			if err := s.store.SaveHistory(user, history); err != nil {
				return fmt.Errorf("saving history: %w", err)
			}
			s.logger.Info("note edited", "user", user, "entry", entryID)
			return nil
		}
	}
	return fmt.Errorf("entry %d: %w", entryID, ErrEntryNotFound)
}

// appendEntry builds a HistoryEntry from a closed interval, assigns the next
// sequence id from the user record, and persists history then the advanced
// counter.
func (s *Service) appendEntry(user string, u *model.User, clockIn, clockOut time.Time, note string) (model.HistoryEntry, error) {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("loading history: %w", err)
	}

	entry := model.HistoryEntry{
		ClockIn:         clockIn,
		ClockOut:        clockOut,
		DurationSeconds: clockOut.Sub(clockIn).Seconds(),
		Date:            clockIn.Format("2006-01-02"),
		Note:            note,
		ID:              u.NextEntryID,
	}

	history = append(history, entry)
	if err := s.store.SaveHistory(user, history); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("saving history: %w", err)
	}

	u.NextEntryID++
	if err := s.store.SaveUser(user, *u); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("saving user: %w", err)
	}

	return entry, nil
}

// parseClockTime parses 24-hour "HH:MM" (or "H:MM") into hour and minute.
func parseClockTime(v string) (int, int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, 0, validationErrorf("invalid time %q: use HH:MM", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, validationErrorf("invalid time %q: hour must be 00-23", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, validationErrorf("invalid time %q: minute must be 00-59", v)
	}
	return hour, minute, nil
}
