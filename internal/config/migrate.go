package config

import (
	"fmt"
	"strings"

	"github.com/wahlandcase/sscmpoll/internal/credentials"
)

// legacyIDPrefix names credentials created from a [legacy] block
const legacyIDPrefix = "sscm-legacy-"

// Migrate moves [legacy] plaintext credentials into store and points
// auth.credentials_id at them. It reports the new credential ID, or "" when
// there was nothing to migrate. An already configured credentials_id is kept
// and the legacy block is dropped.
func (c *Config) Migrate(store *credentials.FileStore) (string, error) {
	if !c.HasLegacyCredentials() {
		c.Legacy = nil
		return "", nil
	}

	if c.Auth.CredentialsID != "" {
		c.Legacy = nil
		return "", nil
	}

	id := legacyIDPrefix + strings.ToLower(strings.ReplaceAll(c.Legacy.UserName, " ", "-"))
	store.PutUsernamePassword(credentials.UsernamePassword{
		ID:       id,
		Username: c.Legacy.UserName,
		Password: c.Legacy.Password,
	})
	if err := store.Save(); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}

	c.Auth.CredentialsID = id
	c.Legacy = nil
	return id, nil
}
