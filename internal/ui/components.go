package ui

import (
	"fmt"
	"strings"

	"github.com/wahlandcase/sscmpoll/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// SectionHeader creates a styled section header with a title and color
// Example: "─── TITLE ───────────"
func SectionHeader(title string, color lipgloss.Color) string {
	dashes := strings.Repeat("─", max(25-len(title), 0))
	headerStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return fmt.Sprintf("%s%s%s",
		headerStyle.Render("  ─── "),
		titleStyle.Render(title),
		headerStyle.Render(" "+dashes),
	)
}

// Spinner frames using braille characters
var SpinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner returns the spinner character at the given frame index
func Spinner(frame int) string {
	return string(SpinnerFrames[frame%len(SpinnerFrames)])
}

// Arrow returns an arrow indicator for selection
func Arrow(selected bool) string {
	if selected {
		return "▶ "
	}
	return "  "
}

// KeyBinding renders a key binding hint
func KeyBinding(key, description string, color lipgloss.Color) string {
	keyStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		descStyle.Render(description),
	)
}

// VerdictIcon returns the icon shown next to a polling verdict
func VerdictIcon(v models.Verdict) string {
	switch v {
	case models.BuildNow:
		return "✓"
	case models.Significant:
		return "~"
	default:
		return "·"
	}
}

// VerdictBadge renders a verdict and its change count as a bordered badge
func VerdictBadge(v models.Verdict, count float64) string {
	color := VerdictColor(v)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
	textStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return style.Render(fmt.Sprintf("%s %s",
		textStyle.Render(VerdictIcon(v)+" "+v.String()),
		countStyle.Render(fmt.Sprintf("(%s changes)", FormatCount(count))),
	))
}

// FormatCount prints whole counts without a fraction
func FormatCount(count float64) string {
	if count == float64(int64(count)) {
		return fmt.Sprintf("%d", int64(count))
	}
	return fmt.Sprintf("%g", count)
}

// EditTypeIcon returns the one-letter marker for an edit type
func EditTypeIcon(e models.EditType) string {
	switch e {
	case models.Add:
		return "A"
	case models.Delete:
		return "D"
	default:
		return "M"
	}
}

// ChangeRow renders one change record on a single line
func ChangeRow(r models.ChangeRecord, highlighted bool, width int) string {
	edit := r.EditType()
	iconStyle := lipgloss.NewStyle().Foreground(EditTypeColor(edit)).Bold(true)
	authorStyle := lipgloss.NewStyle().Foreground(ColorOrange)
	versionStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)

	fileStyle := lipgloss.NewStyle().Foreground(ColorWhite)
	if highlighted {
		fileStyle = fileStyle.Bold(true).Foreground(ColorCyan)
	}

	fileWidth := max(width-30, 10)
	return fmt.Sprintf("%s%s %s %s %s",
		Arrow(highlighted),
		iconStyle.Render(EditTypeIcon(edit)),
		fileStyle.Render(padRight(Truncate(r.AffectedFile(), fileWidth), fileWidth)),
		versionStyle.Render(padRight("v"+r.Version, 6)),
		authorStyle.Render(Truncate(r.Author, 16)),
	)
}

// ChangeTable renders a whole change set, one row per record
func ChangeTable(set *models.ChangeSet, width int) string {
	var lines []string
	lines = append(lines, SectionHeader(fmt.Sprintf("BUILD #%d", set.Build), ColorPurple))
	lines = append(lines, "")

	if set.IsEmpty() {
		dimStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)
		lines = append(lines, dimStyle.Render("  No changes"))
	}
	for _, r := range set.Records {
		lines = append(lines, ChangeRow(r, false, width))
	}

	if set.Truncated {
		warnStyle := lipgloss.NewStyle().Foreground(ColorYellow)
		lines = append(lines, "")
		lines = append(lines, warnStyle.Render(fmt.Sprintf("  ⚠ changelog truncated at line %d", set.StoppedAtLine)))
	}
	return strings.Join(lines, "\n")
}

// ChangeDetail renders every field of a record
func ChangeDetail(r models.ChangeRecord) string {
	labelStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)
	valueStyle := lipgloss.NewStyle().Foreground(ColorWhite)
	editStyle := lipgloss.NewStyle().Foreground(EditTypeColor(r.EditType())).Bold(true)

	author := r.Author
	if r.AuthorEmail != "" {
		author = fmt.Sprintf("%s <%s>", r.Author, r.AuthorEmail)
	}

	rows := [][2]string{
		{"File", valueStyle.Render(r.AffectedFile())},
		{"Action", editStyle.Render(r.Action)},
		{"Version", valueStyle.Render(r.Version)},
		{"Date", valueStyle.Render(r.Date)},
		{"Author", valueStyle.Render(author)},
		{"Comment", valueStyle.Render(r.Comment)},
	}

	var lines []string
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %s %s", labelStyle.Render(padRight(row[0]+":", 9)), row[1]))
	}
	return strings.Join(lines, "\n")
}

// Box creates a bordered box with a bold title line
func Box(content string, title string, borderColor lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	if width > 0 {
		style = style.Width(width)
	}
	if title == "" {
		return style.Render(content)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)
	return style.Render(titleStyle.Render(title) + "\n" + content)
}

// Truncate shortens s to maxLen runes, adding an ellipsis if needed
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
