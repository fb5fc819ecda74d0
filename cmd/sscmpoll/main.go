package main

// Must be first import - fixes Warp terminal delay before lipgloss loads
import _ "github.com/wahlandcase/sscmpoll/internal/termfix"

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/config"
	"github.com/wahlandcase/sscmpoll/internal/credentials"
	"github.com/wahlandcase/sscmpoll/internal/identity"
	"github.com/wahlandcase/sscmpoll/internal/scm"
	"github.com/wahlandcase/sscmpoll/internal/sscm"
	"github.com/wahlandcase/sscmpoll/internal/state"
	"github.com/wahlandcase/sscmpoll/internal/termfix"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoURL = errors.New("no repository URL")

var (
	configFile string
	logLevel   string
	noColor    bool
	dryRun     bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	sscm.SweepPending(log.Logger)

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sscmpoll",
		Short:         "Poll Surround SCM repositories and collect changelogs for builds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			termfix.Configure(os.Stdout, noColor)
			return setupLogger(logLevel)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: user config dir/sscmpoll.toml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&dryRun, "dry-run", false, "Log sscm invocations without running them")

	rootCmd.AddCommand(
		newValidateCmd(),
		newPollCmd(),
		newCheckoutCmd(),
		newChangelogCmd(),
		newConfigCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

// setupLogger sends structured logs to stderr. An empty level keeps info
// until the config is loaded.
func setupLogger(level string) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}).With().Timestamp().Logger()

	if level == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func resolveConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.Path()
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel == "" {
		zerolog.SetGlobalLevel(cfg.LogLevel())
	}
	if cfg.HasLegacyCredentials() {
		log.Warn().Msg("plaintext credentials in [legacy] are deprecated, run `sscmpoll migrate`")
	}
	return cfg, nil
}

// environment is everything a job needs, built from the config
type environment struct {
	cfg   *config.Config
	users *identity.FileDirectory
	store *state.Store
	sscm  *sscm.Client
}

func newEnvironment(cfg *config.Config) (*environment, error) {
	creds, err := credentials.LoadFile(cfg.CredentialsFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	users, err := identity.LoadFile(cfg.UsersFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	resolver := sscm.ToolResolver{Installations: cfg.Tool.Installations, Logger: log.Logger}

	var runner sscm.Runner = sscm.ExecRunner{}
	if dryRun {
		runner = sscm.DryRunner{Logger: log.Logger}
	}

	auth := sscm.Auth{
		Store:         creds,
		CredentialsID: cfg.Auth.CredentialsID,
		RSAKey:        cfg.RSAKey(),
		Logger:        log.Logger,
	}
	if cfg.Legacy != nil {
		auth.LegacyUser = cfg.Legacy.UserName
		auth.LegacyPassword = cfg.Legacy.Password
	}

	client := &sscm.Client{
		Executable:    resolver.Executable(cfg.Tool.Name),
		Runner:        runner,
		Auth:          auth,
		IncludeOutput: cfg.Tool.IncludeOutput,
		SpoolLimit:    cfg.SpoolLimit(),
		TempDir:       cfg.TempDir(),
		Location:      cfg.Location(),
		BuildLog:      os.Stdout,
		Logger:        log.Logger,
	}

	return &environment{
		cfg:   cfg,
		users: users,
		store: state.NewStore(cfg.StateDir()),
		sscm:  client,
	}, nil
}

// job builds the job for url, falling back to server.url
func (e *environment) job(url string) (*scm.Job, error) {
	if url == "" {
		url = e.cfg.Server.URL
	}
	if url == "" {
		return nil, fmt.Errorf("%w: pass --url or set server.url", errNoURL)
	}
	job, err := scm.New(url, e.sscm, e.store, e.users)
	if err != nil {
		return nil, err
	}
	job.Threshold = e.cfg.Polling.Threshold
	return job, nil
}

// saveUsers persists authors registered while parsing
func (e *environment) saveUsers() {
	if err := e.users.Save(); err != nil {
		log.Warn().Err(err).Msg("failed to save users")
	}
}
