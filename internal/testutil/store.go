package testutil

import (
	"testing"

	"punchclock/internal/store"
	"punchclock/internal/timeclock"
)

// NewTestStore creates an in-memory SQLite store with migrations applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) timeclock.Store {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// NewTestJSONStore creates a JSON store rooted in a temporary directory.
func NewTestJSONStore(t *testing.T) timeclock.Store {
	t.Helper()

	s, err := store.NewJSONStore(t.TempDir(), timeclock.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
