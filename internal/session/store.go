package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spec-kit/crm-console/internal/domain"
)

// State is the persisted session material: the bearer token plus the
// serialized user record consumed at bootstrap.
type State struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Store reads and writes the session file. Corrupted entries (non-JSON)
// are discarded rather than surfaced.
type Store struct {
	path string
}

// NewStore creates a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored session, or nil when none exists. A file that
// fails to parse is removed and treated as absent.
func (s *Store) Load() (*State, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil || state.Token == "" {
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &state, nil
}

// Save persists the session with owner-only permissions.
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear removes the session file.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
