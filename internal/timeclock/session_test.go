package timeclock_test

import (
	"errors"
	"testing"
	"time"

	"punchclock/internal/model"
	"punchclock/internal/testutil"
	"punchclock/internal/timeclock"
)

func newTestService(t *testing.T) (*timeclock.Service, timeclock.Store, *testutil.StubClock) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	svc := timeclock.NewService(st, clock, timeclock.NewNopLogger())
	return svc, st, clock
}

func TestService_ClockIn(t *testing.T) {
	t.Run("starts a session", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		res, err := svc.ClockIn("alice", "morning work")
		if err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}
		if !res.At.Equal(clock.Now()) {
			t.Errorf("At = %v, want %v", res.At, clock.Now())
		}

		session, err := st.LoadSession("alice")
		if err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if !session.ClockedIn() {
			t.Error("session not clocked in")
		}
		if session.ClockInNote != "morning work" {
			t.Errorf("ClockInNote = %q", session.ClockInNote)
		}
	})

	t.Run("creates the user on first use", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		if _, err := svc.ClockIn("bob", ""); err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}

		users, err := st.LoadUsers()
		if err != nil {
			t.Fatalf("LoadUsers() error = %v", err)
		}
		if _, ok := users["bob"]; !ok {
			t.Error("user was not created")
		}
	})

	t.Run("rejects a double clock-in and keeps the original session", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		first, err := svc.ClockIn("alice", "first")
		if err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}

		clock.Advance(time.Hour)
		_, err = svc.ClockIn("alice", "second")
		if !errors.Is(err, timeclock.ErrAlreadyClockedIn) {
			t.Fatalf("second ClockIn() error = %v, want ErrAlreadyClockedIn", err)
		}

		session, _ := st.LoadSession("alice")
		if !session.ClockInTime.Equal(first.At) {
			t.Errorf("clock-in time changed to %v, want %v", session.ClockInTime, first.At)
		}
		if session.ClockInNote != "first" {
			t.Errorf("note changed to %q", session.ClockInNote)
		}
	})

	t.Run("truncates a long pending note", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		long := "one two three four five six seven eight nine ten eleven twelve " +
			"thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty twentyone"
		res, err := svc.ClockIn("alice", long)
		if err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}
		want := "one two three four five six seven eight nine ten eleven twelve " +
			"thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty"
		if res.Note != want {
			t.Errorf("Note = %q, want %q", res.Note, want)
		}
	})

	t.Run("rejects a blank username", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.ClockIn("  ", ""); err == nil {
			t.Fatal("ClockIn() expected error for blank username")
		}
	})
}

func TestService_ClockOut(t *testing.T) {
	t.Run("closes the session and appends an entry", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		in, err := svc.ClockIn("alice", "")
		if err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}

		clock.Advance(2 * time.Hour)
		res, err := svc.ClockOut("alice", "")
		if err != nil {
			t.Fatalf("ClockOut() error = %v", err)
		}

		if res.Session != 2*time.Hour {
			t.Errorf("Session = %v, want 2h", res.Session)
		}
		if res.Entry.DurationSeconds != 7200 {
			t.Errorf("DurationSeconds = %v, want 7200", res.Entry.DurationSeconds)
		}
		if res.Entry.Date != in.At.Format("2006-01-02") {
			t.Errorf("Date = %q, want %q", res.Entry.Date, in.At.Format("2006-01-02"))
		}

		session, _ := st.LoadSession("alice")
		if session.ClockedIn() {
			t.Error("session still clocked in")
		}

		history, _ := st.LoadHistory("alice")
		if len(history) != 1 {
			t.Fatalf("len(history) = %d, want 1", len(history))
		}
	})

	t.Run("rejects clock-out without a session", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		_, err := svc.ClockOut("alice", "done")
		if !errors.Is(err, timeclock.ErrAlreadyClockedOut) {
			t.Fatalf("ClockOut() error = %v, want ErrAlreadyClockedOut", err)
		}

		history, _ := st.LoadHistory("alice")
		if len(history) != 0 {
			t.Errorf("len(history) = %d, want 0", len(history))
		}
	})

	t.Run("combines clock-in and clock-out notes", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		if _, err := svc.ClockIn("alice", "standup"); err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}
		clock.Advance(time.Hour)
		res, err := svc.ClockOut("alice", "code review")
		if err != nil {
			t.Fatalf("ClockOut() error = %v", err)
		}
		if res.Entry.Note != "In: standup | Out: code review" {
			t.Errorf("Note = %q", res.Entry.Note)
		}
	})

	t.Run("keeps a lone clock-out note unprefixed", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		if _, err := svc.ClockIn("alice", ""); err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}
		clock.Advance(time.Hour)
		res, err := svc.ClockOut("alice", "wrapped up")
		if err != nil {
			t.Fatalf("ClockOut() error = %v", err)
		}
		if res.Entry.Note != "wrapped up" {
			t.Errorf("Note = %q, want %q", res.Entry.Note, "wrapped up")
		}
	})

	t.Run("assigns sequential entry ids", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		for want := int64(0); want < 3; want++ {
			if _, err := svc.ClockIn("alice", ""); err != nil {
				t.Fatalf("ClockIn() error = %v", err)
			}
			clock.Advance(time.Hour)
			res, err := svc.ClockOut("alice", "")
			if err != nil {
				t.Fatalf("ClockOut() error = %v", err)
			}
			if res.Entry.ID != want {
				t.Errorf("Entry.ID = %d, want %d", res.Entry.ID, want)
			}
			clock.Advance(time.Minute)
		}
	})

	t.Run("clamps a future clock-in to a zero-length session", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		if _, err := svc.CreateUser("alice"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		future := clock.Now().Add(3 * time.Hour)
		session := model.SessionState{
			Status:      model.StatusClockedIn,
			ClockInTime: &future,
		}
		if err := st.SaveSession("alice", session); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		res, err := svc.ClockOut("alice", "")
		if err != nil {
			t.Fatalf("ClockOut() error = %v", err)
		}
		if res.Session != 0 {
			t.Errorf("Session = %v, want 0", res.Session)
		}
		if res.Entry.DurationSeconds != 0 {
			t.Errorf("DurationSeconds = %v, want 0", res.Entry.DurationSeconds)
		}
	})
}

func TestService_AddMissedEntry(t *testing.T) {
	t.Run("records a past session", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		entry, err := svc.AddMissedEntry("alice", "2025-11-11", "9:00", "17:30", "forgot to punch")
		if err != nil {
			t.Fatalf("AddMissedEntry() error = %v", err)
		}
		if entry.Date != "2025-11-11" {
			t.Errorf("Date = %q", entry.Date)
		}
		if entry.DurationSeconds != 8.5*3600 {
			t.Errorf("DurationSeconds = %v, want %v", entry.DurationSeconds, 8.5*3600)
		}
		if entry.Note != "forgot to punch" {
			t.Errorf("Note = %q", entry.Note)
		}

		history, _ := st.LoadHistory("alice")
		if len(history) != 1 {
			t.Fatalf("len(history) = %d, want 1", len(history))
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		tests := []struct {
			name            string
			date, in, out   string
		}{
			{"bad date", "11/11/2025", "9:00", "17:00"},
			{"bad hour", "2025-11-11", "25:00", "26:00"},
			{"bad minute", "2025-11-11", "09:75", "17:00"},
			{"missing colon", "2025-11-11", "0900", "1700"},
			{"out before in", "2025-11-11", "17:00", "9:00"},
			{"out equals in", "2025-11-11", "9:00", "9:00"},
			{"out in the future", "2025-11-12", "09:00", "23:00"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.AddMissedEntry("alice", tt.date, tt.in, tt.out, "")
				if err == nil {
					t.Fatal("AddMissedEntry() expected error")
				}
				var verr *timeclock.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error = %v, want ValidationError", err)
				}
			})
		}
	})
}

func TestService_EditNote(t *testing.T) {
	t.Run("replaces the note on an entry", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		entry, err := svc.AddMissedEntry("alice", "2025-11-11", "9:00", "17:00", "old note")
		if err != nil {
			t.Fatalf("AddMissedEntry() error = %v", err)
		}

		if err := svc.EditNote("alice", entry.ID, "corrected note"); err != nil {
			t.Fatalf("EditNote() error = %v", err)
		}

		history, _ := st.LoadHistory("alice")
		if history[0].Note != "corrected note" {
			t.Errorf("Note = %q, want %q", history[0].Note, "corrected note")
		}
	})

	t.Run("unknown entry id", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		err := svc.EditNote("alice", 42, "note")
		if !errors.Is(err, timeclock.ErrEntryNotFound) {
			t.Fatalf("EditNote() error = %v, want ErrEntryNotFound", err)
		}
	})
}
