package timeclock_test

import (
	"testing"
	"time"

	"punchclock/internal/model"
	"punchclock/internal/timeclock"
)

func warningCodes(ws []timeclock.Warning) map[string]int {
	codes := make(map[string]int)
	for _, w := range ws {
		codes[w.Code]++
	}
	return codes
}

func TestService_CheckIntegrity(t *testing.T) {
	t.Run("clean data has no warnings", func(t *testing.T) {
		svc, _, clock := newTestService(t)
		seedWeek(t, svc)
		if _, err := svc.ResetWeek("alice"); err != nil {
			t.Fatalf("ResetWeek() error = %v", err)
		}
		if _, err := svc.ClockIn("alice", ""); err != nil {
			t.Fatalf("ClockIn() error = %v", err)
		}
		clock.Advance(time.Hour)

		warnings, err := svc.CheckIntegrity("alice")
		if err != nil {
			t.Fatalf("CheckIntegrity() error = %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
	})

	t.Run("detects history overlapping the archive", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		if _, err := svc.CreateUser("alice"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		// An interrupted rollover leaves the archived week's entries still
		// in history.
		stale := model.HistoryEntry{
			ClockIn:         time.Date(2025, 11, 7, 9, 0, 0, 0, time.UTC),
			ClockOut:        time.Date(2025, 11, 7, 17, 0, 0, 0, time.UTC),
			DurationSeconds: 8 * 3600,
			Date:            "2025-11-07",
		}
		week := model.ArchivedWeek{
			WeekEnd:      "2025-11-09",
			TotalHours:   8,
			EntriesCount: 1,
			ArchivedAt:   clock.Now(),
		}
		if err := st.ArchiveWeek("alice", []model.HistoryEntry{stale}, week); err != nil {
			t.Fatalf("ArchiveWeek() error = %v", err)
		}

		warnings, err := svc.CheckIntegrity("alice")
		if err != nil {
			t.Fatalf("CheckIntegrity() error = %v", err)
		}
		if warningCodes(warnings)[timeclock.WarnDuplicatedWeek] != 1 {
			t.Errorf("warnings = %v, want one %s", warnings, timeclock.WarnDuplicatedWeek)
		}
	})

	t.Run("detects broken entries", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		if _, err := svc.CreateUser("alice"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		in := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
		entries := []model.HistoryEntry{
			{ID: 0, ClockIn: in, ClockOut: in.Add(-time.Hour), DurationSeconds: 3600, Date: "2025-11-10"},
			{ID: 1, ClockIn: in, ClockOut: in.Add(time.Hour), DurationSeconds: -100, Date: "2025-11-10"},
			{ID: 2, ClockIn: in, ClockOut: in.Add(time.Hour), DurationSeconds: 7200, Date: "2025-11-10"},
		}
		if err := st.SaveHistory("alice", entries); err != nil {
			t.Fatalf("SaveHistory() error = %v", err)
		}

		warnings, err := svc.CheckIntegrity("alice")
		if err != nil {
			t.Fatalf("CheckIntegrity() error = %v", err)
		}

		codes := warningCodes(warnings)
		if codes[timeclock.WarnInvertedInterval] != 1 {
			t.Errorf("inverted-interval count = %d, want 1", codes[timeclock.WarnInvertedInterval])
		}
		if codes[timeclock.WarnNegativeDuration] != 1 {
			t.Errorf("negative-duration count = %d, want 1", codes[timeclock.WarnNegativeDuration])
		}
		if codes[timeclock.WarnDurationMismatch] == 0 {
			t.Error("expected duration-mismatch warnings")
		}
	})

	t.Run("detects inconsistent session state", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		if _, err := svc.CreateUser("alice"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		lingering := clock.Now().Add(-time.Hour)
		session := model.SessionState{
			Status:      model.StatusClockedOut,
			ClockInTime: &lingering,
		}
		if err := st.SaveSession("alice", session); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		warnings, err := svc.CheckIntegrity("alice")
		if err != nil {
			t.Fatalf("CheckIntegrity() error = %v", err)
		}
		if warningCodes(warnings)[timeclock.WarnSessionState] != 1 {
			t.Errorf("warnings = %v, want one %s", warnings, timeclock.WarnSessionState)
		}
	})

	t.Run("detects a future clock-in", func(t *testing.T) {
		svc, st, clock := newTestService(t)

		if _, err := svc.CreateUser("alice"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		future := clock.Now().Add(2 * time.Hour)
		session := model.SessionState{
			Status:      model.StatusClockedIn,
			ClockInTime: &future,
		}
		if err := st.SaveSession("alice", session); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		warnings, err := svc.CheckIntegrity("alice")
		if err != nil {
			t.Fatalf("CheckIntegrity() error = %v", err)
		}
		if warningCodes(warnings)[timeclock.WarnFutureClockIn] != 1 {
			t.Errorf("warnings = %v, want one %s", warnings, timeclock.WarnFutureClockIn)
		}
	})
}
