package jsonfile

import (
	"context"
	"sync"

	"github.com/hay-kot/kroget/internal/core/sent"
)

// SentFile is the root JSON structure stored on disk.
type SentFile struct {
	Sessions []sent.Session `json:"sessions"`
}

// SentStore implements sent.Store using a JSON file for persistence.
type SentStore struct {
	path string
	mu   sync.RWMutex
}

// NewSentStore creates a new JSON file sent-session store at the given path.
func NewSentStore(path string) *SentStore {
	return &SentStore{path: path}
}

// List returns all sessions, newest first.
func (s *SentStore) List(ctx context.Context) ([]sent.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	return file.Sessions, nil
}

// Get returns a session by ID. Returns sent.ErrNotFound if not found.
func (s *SentStore) Get(ctx context.Context, id string) (sent.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return sent.Session{}, err
	}

	for _, session := range file.Sessions {
		if session.ID == id {
			return session, nil
		}
	}

	return sent.Session{}, sent.ErrNotFound
}

// Record prepends a session, pruning old sessions to stay within max, and
// returns the stored history.
func (s *SentStore) Record(ctx context.Context, session sent.Session, max int) ([]sent.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	// Prepend new session (newest first)
	file.Sessions = append([]sent.Session{session}, file.Sessions...)

	if max > 0 && len(file.Sessions) > max {
		file.Sessions = file.Sessions[:max]
	}

	if err := writeFile(s.path, file); err != nil {
		return nil, err
	}

	return file.Sessions, nil
}

// load reads the history file from disk.
// Returns an empty SentFile if the file doesn't exist.
func (s *SentStore) load() (SentFile, error) {
	var file SentFile
	if _, err := readFile(s.path, &file); err != nil {
		return SentFile{}, err
	}
	if file.Sessions == nil {
		file.Sessions = []sent.Session{}
	}
	return file, nil
}

var _ sent.Store = (*SentStore)(nil)
