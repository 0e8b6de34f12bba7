// Package store keeps the clock session of this device in a JSON file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/timer"
)

const StateFile = "session.json"

type state struct {
	Session *timer.Session   `json:"session,omitempty"`
	Program hours.ProgramKey `json:"program,omitempty"`
}

// FileStore is a timer.Store backed by a single JSON file.
type FileStore struct {
	path string
}

var _ timer.Store = (*FileStore)(nil)

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, StateFile)}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() (state, error) {
	var st state
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, errors.Wrapf(err, "reading %s", s.path)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, errors.Wrapf(err, "corrupt session file %s", s.path)
	}
	return st, nil
}

// save writes to a temp file then renames it over the state file.
func (s *FileStore) save(st state) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating state dir")
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "renaming session file")
	}
	return nil
}

func (s *FileStore) LoadSession() (timer.Session, bool, error) {
	st, err := s.load()
	if err != nil || st.Session == nil {
		return timer.Session{}, false, err
	}
	return *st.Session, true, nil
}

func (s *FileStore) SaveSession(sess timer.Session) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	st.Session = &sess
	return s.save(st)
}

func (s *FileStore) ClearSession() error {
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.Session == nil {
		return nil
	}
	st.Session = nil
	return s.save(st)
}

func (s *FileStore) LoadProgram() (hours.ProgramKey, bool, error) {
	st, err := s.load()
	if err != nil {
		return "", false, err
	}
	return st.Program, st.Program != "", nil
}

func (s *FileStore) SaveProgram(key hours.ProgramKey) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	st.Program = key
	return s.save(st)
}
