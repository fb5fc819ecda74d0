package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/credentials"
	"github.com/wahlandcase/sscmpoll/internal/sscm"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidURL        = errors.New("invalid server url")
	ErrInvalidThreshold  = errors.New("invalid polling threshold")
	ErrInvalidSpoolLimit = errors.New("invalid capture spool limit")
	ErrInvalidRSAKey     = errors.New("invalid rsa key")
	ErrInvalidTimeZone   = errors.New("invalid time zone")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Polling PollingConfig `toml:"polling"`
	Capture CaptureConfig `toml:"capture"`
	Tool    ToolConfig    `toml:"tool"`
	Auth    AuthConfig    `toml:"auth"`
	Paths   PathsConfig   `toml:"paths"`
	Log     LogConfig     `toml:"log"`

	// Legacy holds plaintext credentials from before the credentials file
	Legacy *LegacyConfig `toml:"legacy,omitempty"`

	// Parsed from the fields above by Validate (not serialized)
	spoolLimit int64
	rsaKey     credentials.RSAKey
	location   *time.Location
	logLevel   zerolog.Level
}

type ServerConfig struct {
	URL string `toml:"url"`
	// TimeZone is the IANA zone date ranges are sent in; empty means local
	TimeZone string `toml:"time_zone"`
}

type PollingConfig struct {
	Threshold float64 `toml:"threshold"`
}

type CaptureConfig struct {
	SpoolLimit string `toml:"spool_limit"`
	TempDir    string `toml:"temp_dir"`
}

type ToolConfig struct {
	Name          string              `toml:"name"`
	IncludeOutput bool                `toml:"include_output"`
	Installations []sscm.Installation `toml:"installations"`
}

type AuthConfig struct {
	CredentialsID string `toml:"credentials_id"`
	RSAKeyType    string `toml:"rsa_key_type"`
	RSAKey        string `toml:"rsa_key"`
}

type LegacyConfig struct {
	UserName string `toml:"user_name"`
	Password string `toml:"password,omitempty"`
}

type PathsConfig struct {
	StateDir        string `toml:"state_dir"`
	CredentialsFile string `toml:"credentials_file"`
	UsersFile       string `toml:"users_file"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Polling: PollingConfig{
			Threshold: 1,
		},
		Capture: CaptureConfig{
			SpoolLimit: "8 MiB",
		},
		Tool: ToolConfig{
			Name:          sscm.DefaultInstallationName,
			IncludeOutput: true,
		},
		Auth: AuthConfig{
			RSAKeyType: credentials.NoKey.String(),
		},
		Paths: PathsConfig{
			StateDir:        "~/.sscmpoll/state",
			CredentialsFile: "~/.sscmpoll/credentials.toml",
			UsersFile:       "~/.sscmpoll/users.toml",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the default config file location
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sscmpoll.toml"), nil
}

// Load reads the config from the default location, writing the defaults
// there on first use
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		_ = cfg.SaveTo(path) // Best effort save
	}
	return cfg, nil
}

// LoadFrom reads and validates the config at path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config and caches the parsed values
func (c *Config) Validate() error {
	if c.Server.URL != "" && !sscm.IsValid(c.Server.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.Server.URL)
	}

	t := c.Polling.Threshold
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %v (must be > 0)", ErrInvalidThreshold, t)
	}

	limit, err := humanize.ParseBytes(c.Capture.SpoolLimit)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSpoolLimit, c.Capture.SpoolLimit, err)
	}
	if limit == 0 || limit > math.MaxInt64 {
		return fmt.Errorf("%w: %q", ErrInvalidSpoolLimit, c.Capture.SpoolLimit)
	}
	c.spoolLimit = int64(limit)

	keyType, err := credentials.ParseRSAKeyType(c.Auth.RSAKeyType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRSAKey, err)
	}
	c.rsaKey = credentials.NewRSAKey(keyType, c.Auth.RSAKey)

	c.location = time.Local
	if c.Server.TimeZone != "" {
		loc, err := time.LoadLocation(c.Server.TimeZone)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTimeZone, err)
		}
		c.location = loc
	}

	level := zerolog.InfoLevel
	if c.Log.Level != "" {
		level, err = zerolog.ParseLevel(strings.ToLower(c.Log.Level))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
		}
	}
	c.logLevel = level

	return nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if c.Legacy != nil && c.Legacy.Password != "" {
		mode = 0600
	}
	return os.WriteFile(path, data, mode)
}

// SpoolLimit returns capture.spool_limit in bytes (valid after Validate)
func (c *Config) SpoolLimit() int64 {
	if c.spoolLimit == 0 {
		return sscm.DefaultSpoolLimit
	}
	return c.spoolLimit
}

// RSAKey returns the configured connection key
func (c *Config) RSAKey() credentials.RSAKey {
	return c.rsaKey
}

// Location returns the time zone date ranges are formatted in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func (c *Config) LogLevel() zerolog.Level {
	return c.logLevel
}

func (c *Config) StateDir() string {
	return expandTilde(c.Paths.StateDir)
}

func (c *Config) CredentialsFile() string {
	return expandTilde(c.Paths.CredentialsFile)
}

func (c *Config) UsersFile() string {
	return expandTilde(c.Paths.UsersFile)
}

func (c *Config) TempDir() string {
	return expandTilde(c.Capture.TempDir)
}

// HasLegacyCredentials reports whether plaintext credentials are still configured
func (c *Config) HasLegacyCredentials() bool {
	return c.Legacy != nil && c.Legacy.UserName != ""
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
