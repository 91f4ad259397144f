package jsonfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcelomcd/apontador/internal/core/session"
)

// SessionStore implements session.Store on a single JSON file.
type SessionStore struct {
	path string
	mu   sync.Mutex
}

// NewSessionStore creates a session store at the given path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns the saved state, or session.ErrNotFound if nothing was saved.
func (s *SessionStore) Load(ctx context.Context) (session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st session.State
	found, err := readJSON(s.path, &st)
	if err != nil {
		return session.State{}, fmt.Errorf("read session %s: %w", s.path, err)
	}
	if !found {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

// Save replaces the saved state.
func (s *SessionStore) Save(ctx context.Context, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path, st); err != nil {
		return fmt.Errorf("write session %s: %w", s.path, err)
	}
	return nil
}
