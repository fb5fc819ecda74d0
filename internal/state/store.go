// Package state persists the revision each job last built from.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/wahlandcase/sscmpoll/internal/models"
)

// keyPattern matches job keys as produced by sscm.Address.Key
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// revisionEntry is the persisted form of a job's last revision
type revisionEntry struct {
	Key      string               `json:"key"`
	Revision models.RevisionState `json:"revision"`
}

// Store keeps one JSON file per job key in Dir
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid state key %q", key)
	}
	return filepath.Join(s.Dir, key+".json"), nil
}

// Load returns the saved revision for key. ok is false when nothing was saved.
func (s *Store) Load(key string) (rs models.RevisionState, ok bool, err error) {
	path, err := s.path(key)
	if err != nil {
		return models.RevisionState{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.RevisionState{}, false, nil
		}
		return models.RevisionState{}, false, err
	}

	var entry revisionEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.RevisionState{}, false, fmt.Errorf("corrupt state file %s: %w", path, err)
	}
	return entry.Revision, true, nil
}

// Save writes the revision for key, replacing any previous one atomically
func (s *Store) Save(key string, rs models.RevisionState) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(revisionEntry{Key: key, Revision: rs}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Delete forgets the revision for key
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
