package sscm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// CheckoutArgs builds the `get` command line
func (c *Client) CheckoutArgs(addr Address, workspace string, at time.Time) (*ArgList, func() error, error) {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}

	args := NewArgList(c.executable(), "get", "/",
		"-wreplace",
		"-b"+addr.Branch,
		"-p"+addr.Repository,
		"-d"+workspace,
		"-r",
		"-s"+at.In(loc).Format(snapshotTimeFormat),
	)
	if !c.IncludeOutput {
		args.Add("-q")
	}
	cleanup, err := c.connectionArgs(args, addr, workspace)
	if err != nil {
		return nil, nil, err
	}
	return args, cleanup, nil
}

// Checkout runs `sscm get` into workspace as of at. Tool output goes to
// BuildLog. Any non-zero exit is returned as an *ExitError.
func (c *Client) Checkout(ctx context.Context, addr Address, workspace string, at time.Time) error {
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	args, cleanup, err := c.CheckoutArgs(addr, workspace, at)
	if err != nil {
		return err
	}
	defer c.releaseKey(cleanup)

	c.Logger.Info().Str("command", args.String()).Str("workspace", workspace).Msg("checking out")

	out := c.BuildLog
	if out == nil {
		out = io.Discard
	}
	code, stderr, err := c.runner().Run(ctx, Invocation{Args: args, Dir: workspace, Env: c.Env, Stdout: out})
	if err != nil {
		return err
	}
	if code != 0 {
		c.Logger.Error().Int("exit_code", code).Msg("checkout failed")
		return &ExitError{Subcommand: "get", Command: args.String(), Code: code, Output: stderr}
	}
	return nil
}
