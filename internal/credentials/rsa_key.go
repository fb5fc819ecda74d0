package credentials

import (
	"fmt"
	"strings"
)

// RSAKeyType selects how the server connection is authenticated
type RSAKeyType int

const (
	// NoKey connects with server:port
	NoKey RSAKeyType = iota
	// Path points at an RSA key file on disk
	Path
	// ID names a key file held in the credential store
	ID
)

// ParseRSAKeyType maps "", "none", "path" and "id" onto an RSAKeyType
func ParseRSAKeyType(s string) (RSAKeyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nokey":
		return NoKey, nil
	case "path":
		return Path, nil
	case "id":
		return ID, nil
	default:
		return NoKey, fmt.Errorf("unknown rsa key type %q", s)
	}
}

func (t RSAKeyType) String() string {
	switch t {
	case Path:
		return "path"
	case ID:
		return "id"
	default:
		return "none"
	}
}

// RSAKey is a key file reference: a path or a credential ID
type RSAKey struct {
	Type  RSAKeyType
	Value string
}

// NewRSAKey creates an RSAKey. An empty value always yields NoKey.
func NewRSAKey(t RSAKeyType, value string) RSAKey {
	value = strings.TrimSpace(value)
	if value == "" {
		return RSAKey{Type: NoKey}
	}
	return RSAKey{Type: t, Value: value}
}

// IsSet reports whether a key is configured
func (k RSAKey) IsSet() bool {
	return k.Type != NoKey
}
