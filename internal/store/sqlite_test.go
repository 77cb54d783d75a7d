package store_test

import (
	"testing"
	"time"

	"punchclock/internal/config"
	"punchclock/internal/model"
	"punchclock/internal/store"
	"punchclock/internal/timeclock"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func saveTestUser(t *testing.T, s *store.SQLiteStore, name string) {
	t.Helper()
	u := model.User{Created: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.SaveUser(name, u); err != nil {
		t.Fatalf("SaveUser(%s) error = %v", name, err)
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	t.Run("round-trips and upserts", func(t *testing.T) {
		s := newSQLiteStore(t)

		created := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
		if err := s.SaveUser("alice", model.User{Created: created, TotalHours: 8}); err != nil {
			t.Fatalf("SaveUser() error = %v", err)
		}
		if err := s.SaveUser("alice", model.User{Created: created, TotalHours: 16, NextEntryID: 3}); err != nil {
			t.Fatalf("second SaveUser() error = %v", err)
		}

		users, err := s.LoadUsers()
		if err != nil {
			t.Fatalf("LoadUsers() error = %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("len(users) = %d, want 1", len(users))
		}
		got := users["alice"]
		if got.TotalHours != 16 {
			t.Errorf("TotalHours = %v, want 16", got.TotalHours)
		}
		if got.NextEntryID != 3 {
			t.Errorf("NextEntryID = %d, want 3", got.NextEntryID)
		}
		if !got.Created.Equal(created) {
			t.Errorf("Created = %v, want %v", got.Created, created)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		s := newSQLiteStore(t)
		users, err := s.LoadUsers()
		if err != nil {
			t.Fatalf("LoadUsers() error = %v", err)
		}
		if len(users) != 0 {
			t.Errorf("len(users) = %d, want 0", len(users))
		}
	})
}

func TestSQLiteStore_Session(t *testing.T) {
	t.Run("unknown user defaults to clocked out", func(t *testing.T) {
		s := newSQLiteStore(t)

		session, err := s.LoadSession("ghost")
		if err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if session.Status != model.StatusClockedOut {
			t.Errorf("Status = %q, want %q", session.Status, model.StatusClockedOut)
		}
	})

	t.Run("round-trips clocked-in state", func(t *testing.T) {
		s := newSQLiteStore(t)
		saveTestUser(t, s, "alice")

		at := time.Date(2025, 11, 12, 10, 30, 0, 123456789, time.UTC)
		session := model.SessionState{
			Status:           model.StatusClockedIn,
			TotalTimeSeconds: 3600,
			ClockInTime:      &at,
			ClockInNote:      "focus block",
		}
		if err := s.SaveSession("alice", session); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}

		got, err := s.LoadSession("alice")
		if err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if got.ClockInTime == nil || !got.ClockInTime.Equal(at) {
			t.Errorf("ClockInTime = %v, want %v", got.ClockInTime, at)
		}
		if got.TotalTimeSeconds != 3600 {
			t.Errorf("TotalTimeSeconds = %v, want 3600", got.TotalTimeSeconds)
		}
	})

	t.Run("upsert clears the clock-in time", func(t *testing.T) {
		s := newSQLiteStore(t)
		saveTestUser(t, s, "alice")

		at := time.Now().UTC()
		if err := s.SaveSession("alice", model.SessionState{Status: model.StatusClockedIn, ClockInTime: &at}); err != nil {
			t.Fatalf("SaveSession() error = %v", err)
		}
		if err := s.SaveSession("alice", model.SessionState{Status: model.StatusClockedOut}); err != nil {
			t.Fatalf("second SaveSession() error = %v", err)
		}

		got, _ := s.LoadSession("alice")
		if got.ClockedIn() {
			t.Error("session still clocked in")
		}
		if got.ClockInTime != nil {
			t.Errorf("ClockInTime = %v, want nil", got.ClockInTime)
		}
	})
}

func TestSQLiteStore_History(t *testing.T) {
	s := newSQLiteStore(t)
	saveTestUser(t, s, "alice")
	saveTestUser(t, s, "bob")

	if err := s.SaveHistory("alice", []model.HistoryEntry{sampleEntry(0), sampleEntry(1)}); err != nil {
		t.Fatalf("SaveHistory(alice) error = %v", err)
	}
	if err := s.SaveHistory("bob", []model.HistoryEntry{sampleEntry(0)}); err != nil {
		t.Fatalf("SaveHistory(bob) error = %v", err)
	}

	// Replacing alice's history must not touch bob's.
	if err := s.SaveHistory("alice", []model.HistoryEntry{sampleEntry(2)}); err != nil {
		t.Fatalf("replace SaveHistory() error = %v", err)
	}

	alice, err := s.LoadHistory("alice")
	if err != nil {
		t.Fatalf("LoadHistory(alice) error = %v", err)
	}
	if len(alice) != 1 || alice[0].ID != 2 {
		t.Errorf("alice history = %+v, want single entry 2", alice)
	}

	bob, err := s.LoadHistory("bob")
	if err != nil {
		t.Fatalf("LoadHistory(bob) error = %v", err)
	}
	if len(bob) != 1 {
		t.Errorf("len(bob history) = %d, want 1", len(bob))
	}

	if alice[0].Note != "sample" {
		t.Errorf("Note = %q, want %q", alice[0].Note, "sample")
	}
	if !alice[0].ClockOut.Equal(sampleEntry(2).ClockOut) {
		t.Errorf("ClockOut = %v, want %v", alice[0].ClockOut, sampleEntry(2).ClockOut)
	}
}

func TestSQLiteStore_ArchiveWeek(t *testing.T) {
	s := newSQLiteStore(t)
	saveTestUser(t, s, "alice")

	if err := s.SaveHistory("alice", []model.HistoryEntry{sampleEntry(0), sampleEntry(1)}); err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}

	week := model.ArchivedWeek{
		WeekEnd:      "2025-11-09",
		TotalHours:   8,
		EntriesCount: 1,
		ArchivedAt:   time.Date(2025, 11, 12, 10, 30, 0, 0, time.UTC),
	}
	if err := s.ArchiveWeek("alice", []model.HistoryEntry{sampleEntry(1)}, week); err != nil {
		t.Fatalf("ArchiveWeek() error = %v", err)
	}

	archive, err := s.LoadArchive("alice")
	if err != nil {
		t.Fatalf("LoadArchive() error = %v", err)
	}
	if len(archive) != 1 {
		t.Fatalf("len(archive) = %d, want 1", len(archive))
	}
	if archive[0].WeekEnd != "2025-11-09" || archive[0].TotalHours != 8 {
		t.Errorf("archive[0] = %+v", archive[0])
	}

	history, _ := s.LoadHistory("alice")
	if len(history) != 1 || history[0].ID != 1 {
		t.Errorf("history = %+v, want single entry 1", history)
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	tests := []struct {
		name string
		typ  string
	}{
		{"json by default", ""},
		{"json explicitly", "json"},
		{"sqlite", "sqlite"},
		{"memory", "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.StorageConfig{Type: tt.typ, DataDir: t.TempDir()}
			s, err := store.NewStoreFromConfig(cfg, "install-1", timeclock.NewNopLogger())
			if err != nil {
				t.Fatalf("NewStoreFromConfig() error = %v", err)
			}
			defer s.Close()

			if err := s.SaveUser("alice", model.User{}); err != nil {
				t.Errorf("SaveUser() error = %v", err)
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "redis"}
		if _, err := store.NewStoreFromConfig(cfg, "install-1", timeclock.NewNopLogger()); err == nil {
			t.Fatal("NewStoreFromConfig() expected error for unknown type")
		}
	})
}
