package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wahlandcase/sscmpoll/internal/config"
	"github.com/wahlandcase/sscmpoll/internal/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with fresh flag state and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile, logLevel, noColor, dryRun = "", "", false, false

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
[server]
url = "sscm://server:4900//main//Mainline/Repo"
time_zone = "UTC"

[paths]
state_dir = %q
credentials_file = %q
users_file = %q
%s`, filepath.Join(dir, "state"), filepath.Join(dir, "credentials.toml"), filepath.Join(dir, "users.toml"), extra)

	path := filepath.Join(dir, "sscmpoll.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidate(t *testing.T) {
	out, err := run(t, "--no-color", "validate", "sscm://server:4900//main//Mainline/Repo")
	require.NoError(t, err)

	assert.Contains(t, out, "server      server")
	assert.Contains(t, out, "port        4900")
	assert.Contains(t, out, "branch      main")
	assert.Contains(t, out, "repository  Mainline/Repo")
}

func TestValidateInvalid(t *testing.T) {
	_, err := run(t, "validate", "sscm://server:port//main//repo")
	assert.ErrorContains(t, err, "invalid server URL")
}

func TestConfigInitAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "sscmpoll.toml")

	out, err := run(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)

	_, err = config.LoadFrom(path)
	assert.NoError(t, err)
}

func TestPollDryRun(t *testing.T) {
	path := writeTestConfig(t, "\n[legacy]\nuser_name = \"builder\"\n")

	out, err := run(t, "--config", path, "--dry-run", "--no-color", "poll", "--since", "2023-01-01T12:00:00Z", "--build", "3", "--plain")
	require.NoError(t, err)
	assert.Equal(t, "NO_CHANGES", strings.TrimSpace(out))
}

func TestPollWithoutBaseline(t *testing.T) {
	path := writeTestConfig(t, "")

	out, err := run(t, "--config", path, "--dry-run", "poll", "--plain")
	require.NoError(t, err)
	assert.Equal(t, "BUILD_NOW", strings.TrimSpace(out))
}

func TestPollNeedsURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(path, []byte("[paths]\nstate_dir = \""+filepath.Join(t.TempDir(), "s")+"\"\n"), 0644))

	_, err := run(t, "--config", path, "--dry-run", "poll")
	assert.ErrorIs(t, err, errNoURL)
}

func TestCheckoutDryRun(t *testing.T) {
	path := writeTestConfig(t, "\n[legacy]\nuser_name = \"builder\"\npassword = \"pw\"\n")
	workspace := filepath.Join(t.TempDir(), "ws")
	changelogPath := filepath.Join(t.TempDir(), "changes.txt")

	out, err := run(t, "--config", path, "--dry-run", "--no-color", "checkout",
		"--workspace", workspace, "--build", "5", "--changelog", changelogPath)
	require.NoError(t, err)
	assert.Contains(t, out, "BUILD #5")
	assert.Contains(t, out, "No changes")
	assert.FileExists(t, changelogPath)

	// the recorded revision becomes the next poll's baseline
	out, err = run(t, "--config", path, "--dry-run", "poll", "--plain")
	require.NoError(t, err)
	assert.Equal(t, "NO_CHANGES", strings.TrimSpace(out))
}

func TestChangelogParse(t *testing.T) {
	path := writeTestConfig(t, "")
	changes := filepath.Join(t.TempDir(), "changes.txt")
	require.NoError(t, os.WriteFile(changes, []byte("total-1\n>Mainline/Repo>a.c>2>edit>2023-01-01>fix>alice>alice@example.com\n"), 0644))

	out, err := run(t, "--config", path, "--no-color", "changelog", "parse", changes, "--build", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "BUILD #9")
	assert.Contains(t, out, "Mainline/Repo/a.c")

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.FileExists(t, cfg.UsersFile(), "authors are saved")
}

func TestMigrate(t *testing.T) {
	path := writeTestConfig(t, "\n[legacy]\nuser_name = \"builder\"\npassword = \"pw\"\n")

	out, err := run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sscm-legacy-builder", strings.TrimSpace(out))

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Legacy)
	assert.Equal(t, "sscm-legacy-builder", cfg.Auth.CredentialsID)

	store, err := credentials.LoadFile(cfg.CredentialsFile())
	require.NoError(t, err)
	up, err := store.UsernamePassword("sscm-legacy-builder")
	require.NoError(t, err)
	assert.Equal(t, "pw", up.Password)

	out, err = run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "nothing to migrate", strings.TrimSpace(out))
}
