package sscm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

const (
	rangeTimeFormat    = "20060102150405"
	snapshotTimeFormat = "2006010215:04:05"
)

// Range is a [Start, End) window of check-in times
type Range struct {
	Start time.Time
	End   time.Time
}

// Since returns the range from a baseline revision up to end
func Since(baseline models.RevisionState, end time.Time) Range {
	return Range{Start: baseline.Timestamp(), End: end}
}

// Format renders the range as YYYYMMDDHHMMSS:YYYYMMDDHHMMSS in loc
func (r Range) Format(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return r.Start.In(loc).Format(rangeTimeFormat) + ":" + r.End.In(loc).Format(rangeTimeFormat)
}

// Client builds sscm invocations and runs them through a Runner
type Client struct {
	// Executable is the resolved sscm binary
	Executable string
	Runner     Runner
	Auth       Auth

	// IncludeOutput keeps `get` output in the build log (no -q)
	IncludeOutput bool
	// SpoolLimit is the in-memory capture limit in bytes
	SpoolLimit int64
	// TempDir holds spilled captures and materialized key files
	TempDir string
	// Location is the time zone ranges are formatted in (nil = local)
	Location *time.Location
	// BuildLog receives checkout output
	BuildLog io.Writer
	// Env is appended to the process environment
	Env []string

	Logger zerolog.Logger
}

func (c *Client) executable() string {
	if c.Executable == "" {
		return DefaultExecutable()
	}
	return c.Executable
}

func (c *Client) runner() Runner {
	if c.Runner == nil {
		return ExecRunner{}
	}
	return c.Runner
}

// connectionArgs appends -z and the masked -y argument
func (c *Client) connectionArgs(args *ArgList, addr Address, dir string) (func() error, error) {
	user, err := c.Auth.UserArg()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = c.TempDir
	}
	conn, cleanup := c.Auth.ConnectionArg(addr, dir)
	args.Add(conn)
	args.AddMasked(user)
	return cleanup, nil
}

// ChangesArgs builds the `cc` command line for a range
func (c *Client) ChangesArgs(addr Address, rng Range) (*ArgList, func() error, error) {
	args := NewArgList(c.executable(), "cc", "/",
		"-d"+rng.Format(c.Location),
		"-b"+addr.Branch,
		"-p"+addr.Repository,
		"-r",
	)
	cleanup, err := c.connectionArgs(args, addr, "")
	if err != nil {
		return nil, nil, err
	}
	return args, cleanup, nil
}

// Capture runs `sscm cc` over rng and spools its stdout.
// On a non-zero exit both the capture and an *ExitError are returned; the
// caller owns the capture and must Close it. If ctx is cancelled the output
// is discarded and only ctx.Err() is returned.
func (c *Client) Capture(ctx context.Context, addr Address, rng Range, mode Mode) (*Capture, error) {
	args, cleanup, err := c.ChangesArgs(addr, rng)
	if err != nil {
		return nil, err
	}
	defer c.releaseKey(cleanup)

	c.Logger.Info().
		Str("mode", mode.String()).
		Str("command", args.String()).
		Str("date_range", rng.Format(c.Location)).
		Msg("executing sscm")

	limit := c.SpoolLimit
	if mode == CountOnly && (limit <= 0 || limit > humanize.MiByte) {
		limit = humanize.MiByte
	}
	spool := NewSpool(limit, c.TempDir)

	code, stderr, err := c.runner().Run(ctx, Invocation{Args: args, Env: c.Env, Stdout: spool})
	if err != nil {
		c.discard(spool)
		return nil, err
	}

	capture := &Capture{Mode: mode, Range: rng, Command: args.String(), ExitCode: code, spool: spool}
	c.Logger.Debug().
		Str("mode", mode.String()).
		Str("size", humanize.IBytes(uint64(spool.Size()))).
		Bool("spilled", spool.Path() != "").
		Msg("sscm output captured")

	if code != 0 {
		exitErr := &ExitError{Subcommand: "cc", Command: args.String(), Code: code, Output: stderr}
		c.Logger.Error().Int("exit_code", code).Str("mode", mode.String()).Msg("sscm cc failed")
		return capture, exitErr
	}
	return capture, nil
}

// CaptureTo streams a full changelog for rng into w
func (c *Client) CaptureTo(ctx context.Context, addr Address, rng Range, w io.Writer) error {
	args, cleanup, err := c.ChangesArgs(addr, rng)
	if err != nil {
		return err
	}
	defer c.releaseKey(cleanup)

	c.Logger.Info().
		Str("command", args.String()).
		Str("date_range", rng.Format(c.Location)).
		Msg("capturing changelog")

	code, stderr, err := c.runner().Run(ctx, Invocation{Args: args, Env: c.Env, Stdout: w})
	if err != nil {
		return err
	}
	if code != 0 {
		c.Logger.Error().Int("exit_code", code).Msg("changelog failed")
		return &ExitError{Subcommand: "cc", Command: args.String(), Code: code, Output: stderr}
	}
	return nil
}

// CaptureFile writes a full changelog for rng to path. On failure the
// partially written file is removed.
func (c *Client) CaptureFile(ctx context.Context, addr Address, rng Range, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create changelog file: %w", err)
	}

	captureErr := c.CaptureTo(ctx, addr, rng, f)
	closeErr := f.Close()
	if err := errors.Join(captureErr, closeErr); err != nil {
		os.Remove(path)
		return err
	}

	c.Logger.Info().Str("path", path).Msg("changelog calculated successfully")
	return nil
}

func (c *Client) releaseKey(cleanup func() error) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		c.Logger.Warn().Err(err).Msg("failed to remove temporary key file")
	}
}

func (c *Client) discard(spool *Spool) {
	if err := spool.Close(); err != nil {
		c.Logger.Warn().Err(err).Msg("failed to release capture, marked for later cleanup")
	}
}
