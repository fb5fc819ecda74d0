package sscm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials is returned when no username credential can be resolved
var ErrMissingCredentials = errors.New("failed to find a username/password credential")

// ExitError reports a non-zero exit from the sscm executable
type ExitError struct {
	// Subcommand is "cc" or "get"
	Subcommand string
	// Command is the masked command line
	Command string
	// Code is the process exit code
	Code int
	// Output is whatever the tool wrote to stderr
	Output string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("sscm %s failed with exit code %d", e.Subcommand, e.Code)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// IsExitError reports whether err is (or wraps) an ExitError
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
