package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"punchclock/internal/model"
	"punchclock/internal/timeclock"
)

// Document file names inside the data directory. Each file holds one JSON
// object mapping username to that user's slice of the collection.
const (
	usersFile    = "users.json"
	sessionsFile = "sessions.json"
	historyFile  = "history.json"
	archiveFile  = "archive.json"
)

// JSONStore persists each collection as a single multi-user JSON document.
//
// Reads fail open: a missing or unreadable document loads as an empty
// collection (availability over strictness — the data is advisory). Writes
// re-read the full document and merge the one-user update into it before
// atomically replacing the file, so saving one user never clobbers another
// user's data written by a different process run.
//
// There is no cross-process locking: concurrent writers are last-writer-wins
// at whole-document granularity, which is acceptable for the single
// interactive user this tool is built for.
type JSONStore struct {
	dir    string
	mu     sync.Mutex
	logger timeclock.Logger
}

var _ timeclock.Store = (*JSONStore)(nil)

// NewJSONStore creates a store rooted at dir, creating it if needed.
func NewJSONStore(dir string, logger timeclock.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &JSONStore{dir: dir, logger: logger}, nil
}

func (s *JSONStore) LoadUsers() (map[string]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readDocument[model.User](s, usersFile), nil
}

func (s *JSONStore) SaveUser(name string, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mergeAndWrite(s, usersFile, name, u)
}

func (s *JSONStore) LoadSession(user string) (model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := readDocument[model.SessionState](s, sessionsFile)
	session, ok := doc[user]
	if !ok {
		return model.SessionState{Status: model.StatusClockedOut}, nil
	}
	return session, nil
}

func (s *JSONStore) SaveSession(user string, session model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mergeAndWrite(s, sessionsFile, user, session)
}

func (s *JSONStore) LoadHistory(user string) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readDocument[[]model.HistoryEntry](s, historyFile)[user], nil
}

func (s *JSONStore) SaveHistory(user string, entries []model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveHistoryLocked(user, entries)
}

func (s *JSONStore) LoadArchive(user string) ([]model.ArchivedWeek, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readDocument[[]model.ArchivedWeek](s, archiveFile)[user], nil
}

// ArchiveWeek appends the archived week, then replaces the history. The two
// documents cannot be written atomically together; writing the archive first
// means a crash in between leaves a detectable duplicated week instead of
// silently dropping data.
func (s *JSONStore) ArchiveWeek(user string, keep []model.HistoryEntry, week model.ArchivedWeek) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive := readDocument[[]model.ArchivedWeek](s, archiveFile)
	archive[user] = append(archive[user], week)
	if err := s.writeDocument(archiveFile, archive); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}

	return s.saveHistoryLocked(user, keep)
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) saveHistoryLocked(user string, entries []model.HistoryEntry) error {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return mergeAndWrite(s, historyFile, user, entries)
}

// readDocument loads a full multi-user document, treating a missing or
// corrupt file as empty.
func readDocument[T any](s *JSONStore, name string) map[string]T {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("document unreadable, treating as empty", "file", name, "error", err)
		}
		return map[string]T{}
	}

	var doc map[string]T
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("document corrupt, treating as empty", "file", name, "error", err)
		return map[string]T{}
	}
	if doc == nil {
		doc = map[string]T{}
	}
	return doc
}

// mergeAndWrite re-reads the full document, replaces one user's slice, and
// atomically rewrites the file.
func mergeAndWrite[T any](s *JSONStore, name, user string, value T) error {
	doc := readDocument[T](s, name)
	doc[user] = value
	if err := s.writeDocument(name, doc); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// writeDocument writes via a temp file in the same directory and renames it
// into place so readers never observe a partial document.
func (s *JSONStore) writeDocument(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}
