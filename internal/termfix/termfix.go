// Package termfix prepares the terminal before anything renders: it works
// around Warp's slow capability probe and picks the color profile.
//
// Import it first (before any lipgloss/termenv imports) using:
//
//	_ "github.com/wahlandcase/sscmpoll/internal/termfix"
package termfix

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	if os.Getenv("TERM_PROGRAM") == "WarpTerminal" {
		os.Setenv("TERM", "dumb")
		os.Setenv("COLORTERM", "truecolor")
	}
}

// Configure sets the lipgloss color profile for output written to w.
// noColor or a non-empty NO_COLOR forces plain text.
func Configure(w io.Writer, noColor bool) termenv.Profile {
	profile := termenv.Ascii
	if !noColor && os.Getenv("NO_COLOR") == "" {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	lipgloss.SetColorProfile(profile)
	return profile
}
