package ui

import (
	"github.com/wahlandcase/sscmpoll/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Note: color profile setup is in internal/termfix, applied before rendering

var (
	ColorCyan       = lipgloss.Color("#00FFFF")
	ColorGreen      = lipgloss.Color("#00FF00")
	ColorYellow     = lipgloss.Color("#FFFF00")
	ColorRed        = lipgloss.Color("#FF0000")
	ColorMagenta    = lipgloss.Color("#FF00FF")
	ColorBlue       = lipgloss.Color("#5555FF")
	ColorPurple     = lipgloss.Color("#AA55FF")
	ColorOrange     = lipgloss.Color("#FFA500")
	ColorLightGreen = lipgloss.Color("#90EE90")
	ColorWhite      = lipgloss.Color("#FFFFFF")
	ColorDarkGray   = lipgloss.Color("8") // ANSI 8
)

func VerdictColor(v models.Verdict) lipgloss.Color {
	switch v {
	case models.BuildNow:
		return ColorGreen
	case models.Significant:
		return ColorYellow
	default:
		return ColorDarkGray
	}
}

func EditTypeColor(e models.EditType) lipgloss.Color {
	switch e {
	case models.Add:
		return ColorLightGreen
	case models.Delete:
		return ColorRed
	default:
		return ColorCyan
	}
}
