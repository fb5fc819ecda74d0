package sscm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"
)

// maxStderr bounds how much stderr is kept for error messages
const maxStderr = 4096

// Invocation is one run of the sscm executable
type Invocation struct {
	Args   *ArgList
	Dir    string
	Env    []string
	Stdout io.Writer
}

// Runner runs an external tool. It returns the exit code; err is non-nil only
// when the process could not be started or ctx was cancelled.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (exitCode int, stderr string, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) (int, string, error) {
	args := inv.Args.Args()
	if len(args) == 0 {
		return -1, "", errors.New("empty command line")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}
	cmd.Stdout = inv.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}
	stderr := &limitedBuffer{max: maxStderr}
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, stderr.String(), ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), stderr.String(), nil
		}
		return -1, stderr.String(), fmt.Errorf("failed to run %s: %w", args[0], err)
	}
	return 0, stderr.String(), nil
}

// DryRunner logs invocations without running them. A changes query reports
// no changes; other commands produce no output.
type DryRunner struct {
	Logger zerolog.Logger
}

func (d DryRunner) Run(ctx context.Context, inv Invocation) (int, string, error) {
	if err := ctx.Err(); err != nil {
		return -1, "", err
	}
	d.Logger.Info().Str("command", inv.Args.String()).Msg("dry run, not executing")
	if inv.Stdout != nil && subcommand(inv.Args) == "cc" {
		if _, err := io.WriteString(inv.Stdout, "total-0\n"); err != nil {
			return -1, "", err
		}
	}
	return 0, "", nil
}

// subcommand returns the sscm command name following the executable
func subcommand(args *ArgList) string {
	if args == nil || args.Len() < 2 {
		return ""
	}
	return args.Args()[1]
}

// limitedBuffer keeps the first max bytes written and drops the rest
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
