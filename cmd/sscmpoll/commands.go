package main

import (
	"fmt"
	"os"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/app"
	"github.com/wahlandcase/sscmpoll/internal/changelog"
	"github.com/wahlandcase/sscmpoll/internal/config"
	"github.com/wahlandcase/sscmpoll/internal/credentials"
	"github.com/wahlandcase/sscmpoll/internal/identity"
	"github.com/wahlandcase/sscmpoll/internal/models"
	"github.com/wahlandcase/sscmpoll/internal/polling"
	"github.com/wahlandcase/sscmpoll/internal/sscm"
	"github.com/wahlandcase/sscmpoll/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate URL",
		Short: "Check a sscm:// repository URL and print its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, ok := sscm.ParseAddress(args[0])
			if !ok {
				return fmt.Errorf("invalid server URL %q: expected sscm://server:port//branch//repository", args[0])
			}

			labelStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
			out := cmd.OutOrStdout()
			for _, row := range [][2]string{
				{"server", addr.Server},
				{"port", addr.Port},
				{"branch", addr.Branch},
				{"repository", addr.Repository},
				{"key", addr.Key()},
			} {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", row[0])), row[1])
			}
			return nil
		},
	}
}

func newPollCmd() *cobra.Command {
	var (
		url   string
		since string
		build int
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Decide whether the repository changed since the last build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := newEnvironment(cfg)
			if err != nil {
				return err
			}
			job, err := env.job(url)
			if err != nil {
				return err
			}

			var res polling.Result
			if since != "" {
				var ts time.Time
				ts, err = time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("invalid --since (want RFC3339): %w", err)
				}
				res, err = job.PollSince(cmd.Context(), models.NewRevisionState(ts, build))
			} else {
				res, err = job.Poll(cmd.Context())
			}
			if err != nil {
				return err
			}

			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), res.Verdict.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.VerdictBadge(res.Verdict, res.Count))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Repository URL (default: server.url)")
	cmd.Flags().StringVar(&since, "since", "", "Baseline time (RFC3339) instead of the recorded revision")
	cmd.Flags().IntVar(&build, "build", 0, "Baseline build number used with --since")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print only the verdict name")
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	var (
		url           string
		workspace     string
		build         int
		changelogPath string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Get a working copy, record the revision, and capture the changelog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := newEnvironment(cfg)
			if err != nil {
				return err
			}
			job, err := env.job(url)
			if err != nil {
				return err
			}

			result, err := job.Checkout(cmd.Context(), workspace, build, changelogPath)
			env.saveUsers()
			if err != nil {
				return err
			}

			log.Info().
				Int("build", result.Revision.BuildNumber()).
				Time("timestamp", result.Revision.Timestamp()).
				Msg("revision recorded")
			if result.Changes != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.ChangeTable(result.Changes, 80))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Repository URL (default: server.url)")
	cmd.Flags().StringVar(&workspace, "workspace", "", "Directory to get the working copy into")
	cmd.Flags().IntVar(&build, "build", 0, "Build number to record")
	cmd.Flags().StringVar(&changelogPath, "changelog", "", "Write the changelog since the previous build to this file")
	cmd.MarkFlagRequired("workspace")
	cmd.MarkFlagRequired("build")
	return cmd
}

func newChangelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Work with captured changelogs",
	}

	var (
		interactive bool
		build       int
	)
	parseCmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a captured changelog and show its changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			users, err := identity.LoadFile(cfg.UsersFile())
			if err != nil {
				return fmt.Errorf("failed to load users: %w", err)
			}
			defer func() {
				if err := users.Save(); err != nil {
					log.Warn().Err(err).Msg("failed to save users")
				}
			}()

			parser := &changelog.Parser{Directory: users, Build: build, Logger: log.Logger}

			if interactive {
				p := tea.NewProgram(app.New(parser, args[0], dryRun), tea.WithAltScreen())
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("error running program: %w", err)
				}
				return nil
			}

			set, err := parser.ParseFile(args[0])
			if set != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.ChangeTable(set, 80))
			}
			return err
		},
	}
	parseCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the changes in a TUI")
	parseCmd.Flags().IntVar(&build, "build", 0, "Build number to label the change set with")

	cmd.AddCommand(parseCmd)
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sscmpoll config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move [legacy] plaintext credentials into the credentials file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Legacy == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate")
				return nil
			}

			store, err := credentials.LoadFile(cfg.CredentialsFile())
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}
			id, err := cfg.Migrate(store)
			if err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "removed legacy credentials, keeping auth.credentials_id")
				return nil
			}
			log.Info().Str("credentials_id", id).Str("file", cfg.CredentialsFile()).Msg("migrated legacy credentials")
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
