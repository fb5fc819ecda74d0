package sscm

import (
	"fmt"

	"github.com/wahlandcase/sscmpoll/internal/credentials"

	"github.com/rs/zerolog"
)

// Auth resolves the connection (-z) and user (-y) arguments
type Auth struct {
	Store         credentials.Store
	CredentialsID string
	RSAKey        credentials.RSAKey

	// Deprecated plaintext credentials kept for configs that were never migrated
	LegacyUser     string
	LegacyPassword string

	Logger zerolog.Logger
}

// UserArg returns "-y<user>:<password>" (or "-y<user>" for a legacy user
// without a password). The result is a secret and must be added masked.
func (a Auth) UserArg() (string, error) {
	var lookupErr error
	if a.CredentialsID != "" {
		if a.Store == nil {
			lookupErr = fmt.Errorf("no credential store configured")
		} else {
			c, err := a.Store.UsernamePassword(a.CredentialsID)
			if err == nil {
				return fmt.Sprintf("-y%s:%s", c.Username, c.Password), nil
			}
			lookupErr = err
		}
	}

	if a.LegacyUser != "" {
		if a.LegacyPassword != "" {
			return fmt.Sprintf("-y%s:%s", a.LegacyUser, a.LegacyPassword), nil
		}
		return "-y" + a.LegacyUser, nil
	}

	if lookupErr != nil {
		return "", fmt.Errorf("%w [%s]: %v", ErrMissingCredentials, a.CredentialsID, lookupErr)
	}
	return "", fmt.Errorf("%w [%s]", ErrMissingCredentials, a.CredentialsID)
}

// ConnectionArg returns "-z<key path>" when an RSA key is usable, otherwise
// "-z<server>:<port>". Key file credentials are written into dir; the
// returned cleanup removes them.
func (a Auth) ConnectionArg(addr Address, dir string) (string, func() error) {
	noop := func() error { return nil }

	switch a.RSAKey.Type {
	case credentials.ID:
		path, cleanup, err := a.materializeKey(dir)
		if err == nil {
			return "-z" + path, cleanup
		}
		a.Logger.Error().Err(err).Str("key_id", a.RSAKey.Value).
			Msg("failed to retrieve RSA key file, falling back to server:port")
	case credentials.Path:
		return "-z" + a.RSAKey.Value, noop
	}

	return "-z" + addr.ConnectionString(), noop
}

func (a Auth) materializeKey(dir string) (string, func() error, error) {
	if a.Store == nil {
		return "", nil, fmt.Errorf("no credential store configured")
	}
	kf, err := a.Store.KeyFile(a.RSAKey.Value)
	if err != nil {
		return "", nil, err
	}
	return kf.Materialize(dir)
}
