package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCredentials = `
[[username_password]]
id = "build"
username = "builder"
password = "inline"

[[username_password]]
id = "from-env"
username = "ci"
password_env = "SSCM_TEST_PASSWORD"

[[key_file]]
id = "inline-key"
content = "<RSAKeyValue>secret</RSAKeyValue>"

[[key_file]]
id = "disk-key"
path = "/etc/sscm/key.xml"
`

func writeStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCredentials), 0600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	return s
}

func TestFileStoreUsernamePassword(t *testing.T) {
	s := writeStore(t)
	s.getenv = func(key string) string {
		if key == "SSCM_TEST_PASSWORD" {
			return "from-environment"
		}
		return ""
	}

	c, err := s.UsernamePassword("build")
	require.NoError(t, err)
	assert.Equal(t, "builder", c.Username)
	assert.Equal(t, "inline", c.Password)

	c, err = s.UsernamePassword("from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-environment", c.Password)

	_, err = s.UsernamePassword("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	_, err = s.KeyFile("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorePutAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.toml")
	s, err := LoadFile(path)
	require.NoError(t, err)

	s.PutUsernamePassword(UsernamePassword{ID: "legacy", Username: "old", Password: "pw"})
	s.PutUsernamePassword(UsernamePassword{ID: "legacy", Username: "old", Password: "pw2"})
	require.NoError(t, s.Save())

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	c, err := reloaded.UsernamePassword("legacy")
	require.NoError(t, err)
	assert.Equal(t, "pw2", c.Password)
	assert.Len(t, reloaded.data.UsernamePassword, 1)
}

func TestKeyFileMaterialize(t *testing.T) {
	s := writeStore(t)
	dir := t.TempDir()

	inline, err := s.KeyFile("inline-key")
	require.NoError(t, err)
	path, cleanup, err := inline.Materialize(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<RSAKeyValue>secret</RSAKeyValue>", string(data))

	require.NoError(t, cleanup())
	assert.NoFileExists(t, path)

	onDisk, err := s.KeyFile("disk-key")
	require.NoError(t, err)
	path, cleanup, err = onDisk.Materialize(dir)
	require.NoError(t, err)
	assert.Equal(t, "/etc/sscm/key.xml", path)
	assert.NoError(t, cleanup())
}

func TestNewRSAKey(t *testing.T) {
	assert.Equal(t, RSAKey{Type: NoKey}, NewRSAKey(Path, "   "))
	assert.Equal(t, RSAKey{Type: ID, Value: "key"}, NewRSAKey(ID, " key "))
	assert.True(t, NewRSAKey(Path, "/k.xml").IsSet())

	typ, err := ParseRSAKeyType("ID")
	require.NoError(t, err)
	assert.Equal(t, ID, typ)

	_, err = ParseRSAKeyType("token")
	assert.Error(t, err)
}
