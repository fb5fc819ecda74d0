// Package identity keeps the directory of change authors and their email
// addresses. Addresses set by an administrator are explicit and are never
// replaced by addresses found in changelogs.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// User is one known author
type User struct {
	Name          string `toml:"name"`
	Email         string `toml:"email,omitempty"`
	ExplicitEmail bool   `toml:"explicit_email,omitempty"`
}

// Directory resolves author names to users
type Directory interface {
	// Get returns the user, registering it if unknown
	Get(name string) User
	// SetEmail backfills an address unless the user has an explicit one.
	// It reports whether the address was stored.
	SetEmail(name, email string) bool
}

type fileFormat struct {
	Users []User `toml:"user"`
}

// FileDirectory is a Directory persisted as TOML. A zero path keeps it in memory.
type FileDirectory struct {
	mu    sync.Mutex
	path  string
	users map[string]*User
	dirty bool
}

// NewMemoryDirectory creates a directory that is never saved
func NewMemoryDirectory() *FileDirectory {
	return &FileDirectory{users: make(map[string]*User)}
}

// LoadFile reads a users file. A missing file yields an empty directory.
func LoadFile(path string) (*FileDirectory, error) {
	d := &FileDirectory{path: path, users: make(map[string]*User)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, err
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid users file %s: %w", path, err)
	}
	for i := range f.Users {
		u := f.Users[i]
		if u.Name == "" {
			continue
		}
		d.users[u.Name] = &u
	}
	return d, nil
}

func (d *FileDirectory) Get(name string) User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.lookup(name)
}

func (d *FileDirectory) lookup(name string) *User {
	u, ok := d.users[name]
	if !ok {
		u = &User{Name: name}
		d.users[name] = u
		d.dirty = true
	}
	return u
}

func (d *FileDirectory) SetEmail(name, email string) bool {
	if email == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	u := d.lookup(name)
	if u.ExplicitEmail {
		return false
	}
	if u.Email != email {
		u.Email = email
		d.dirty = true
	}
	return true
}

// SetExplicitEmail configures an address that changelogs may not replace
func (d *FileDirectory) SetExplicitEmail(name, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u := d.lookup(name)
	u.Email = email
	u.ExplicitEmail = email != ""
	d.dirty = true
}

// Users returns all users sorted by name
func (d *FileDirectory) Users() []User {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := make([]User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// Save writes the directory if it changed since loading
func (d *FileDirectory) Save() error {
	if d.path == "" {
		return nil
	}
	users := d.Users()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(fileFormat{Users: users})
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.path, data, 0644); err != nil {
		return err
	}
	d.dirty = false
	return nil
}
