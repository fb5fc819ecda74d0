package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the ASCII art application header
var Banner = []string{
	"  ___ ___  ___ __  __ ___  ___  _    _    ",
	" / __/ __|/ __|  \\/  | _ \\/ _ \\| |  | |   ",
	" \\__ \\__ \\ (__| |\\/| |  _/ (_) | |__| |__ ",
	" |___/___/\\___|_|  |_|_|  \\___/|____|____|",
}

// RenderBanner returns the styled banner as a string
func RenderBanner(dryRun bool) string {
	return strings.Join(RenderBannerLines(dryRun), "\n")
}

// RenderBannerLines returns the banner as individual lines
func RenderBannerLines(dryRun bool) []string {
	bannerStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	for _, line := range Banner {
		lines = append(lines, bannerStyle.Render(line))
	}

	if dryRun {
		lines = append(lines, "")
		warningStyle := lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)
		lines = append(lines, warningStyle.Render("⚠ DRY RUN MODE"))
	}

	return lines
}
