// ABOUTME: File-backed session persistence for the signed-in user identifier.
// ABOUTME: Stores a single integer; absence of the file means no active session.

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store persists the current user's identifier across process restarts.
// It holds one value; the caller resolves it back into a user record via
// the directory at startup.
type Store struct {
	path string
}

// New creates a session store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted user identifier. The second return value is
// false when no session is stored. A file that cannot be parsed is
// reported as an error so the caller can clear it.
func (s *Store) Load() (int64, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading session file: %w", err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing session file: %w", err)
	}

	return id, true, nil
}

// Save persists the user identifier, creating parent directories as needed.
func (s *Store) Save(id int64) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(strconv.FormatInt(id, 10)+"\n"), 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is not
// an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
