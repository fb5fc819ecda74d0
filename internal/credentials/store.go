package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned when no credential has the requested ID
var ErrNotFound = errors.New("credential not found")

// UsernamePassword is a user credential for the -y flag
type UsernamePassword struct {
	ID       string
	Username string
	Password string
}

// KeyFile is an RSA key file credential, either a path or inline content
type KeyFile struct {
	ID      string
	Path    string
	Content string
}

// Store looks up credentials by ID
type Store interface {
	UsernamePassword(id string) (UsernamePassword, error)
	KeyFile(id string) (KeyFile, error)
}

type fileFormat struct {
	UsernamePassword []usernamePasswordEntry `toml:"username_password"`
	KeyFile          []keyFileEntry          `toml:"key_file"`
}

type usernamePasswordEntry struct {
	ID          string `toml:"id"`
	Username    string `toml:"username"`
	Password    string `toml:"password,omitempty"`
	PasswordEnv string `toml:"password_env,omitempty"`
}

type keyFileEntry struct {
	ID      string `toml:"id"`
	Path    string `toml:"path,omitempty"`
	Content string `toml:"content,omitempty"`
}

// FileStore is a Store backed by a TOML file
type FileStore struct {
	mu     sync.RWMutex
	path   string
	data   fileFormat
	getenv func(string) string
}

// LoadFile reads a credentials file. A missing file yields an empty store.
func LoadFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, getenv: os.Getenv}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, &s.data); err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	return s, nil
}

// UsernamePassword returns the user credential with the given ID.
// password_env takes precedence over an inline password.
func (s *FileStore) UsernamePassword(id string) (UsernamePassword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.data.UsernamePassword {
		if e.ID != id {
			continue
		}
		password := e.Password
		if e.PasswordEnv != "" {
			password = s.getenv(e.PasswordEnv)
		}
		return UsernamePassword{ID: e.ID, Username: e.Username, Password: password}, nil
	}
	return UsernamePassword{}, fmt.Errorf("username/password %q: %w", id, ErrNotFound)
}

// KeyFile returns the key file credential with the given ID
func (s *FileStore) KeyFile(id string) (KeyFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.data.KeyFile {
		if e.ID == id {
			return KeyFile{ID: e.ID, Path: e.Path, Content: e.Content}, nil
		}
	}
	return KeyFile{}, fmt.Errorf("key file %q: %w", id, ErrNotFound)
}

// PutUsernamePassword adds or replaces a user credential
func (s *FileStore) PutUsernamePassword(c UsernamePassword) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := usernamePasswordEntry{ID: c.ID, Username: c.Username, Password: c.Password}
	for i, e := range s.data.UsernamePassword {
		if e.ID == c.ID {
			s.data.UsernamePassword[i] = entry
			return
		}
	}
	s.data.UsernamePassword = append(s.data.UsernamePassword, entry)
}

// Save writes the store back to its file with owner-only permissions
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Materialize returns a path to the key on disk. Inline content is written
// to a temp file in dir (CreateTemp uses 0600); cleanup removes it. Path-based keys are
// returned as-is with a no-op cleanup.
func (k KeyFile) Materialize(dir string) (string, func() error, error) {
	noop := func() error { return nil }
	if k.Content == "" {
		if k.Path == "" {
			return "", noop, fmt.Errorf("key file %q has neither path nor content", k.ID)
		}
		return k.Path, noop, nil
	}

	f, err := os.CreateTemp(dir, "RSAKeyFile*.xml")
	if err != nil {
		return "", noop, err
	}
	if _, err := f.WriteString(k.Content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", noop, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", noop, err
	}

	path := f.Name()
	return path, func() error { return os.Remove(path) }, nil
}
