package app

import (
	"fmt"
	"strings"

	"github.com/wahlandcase/sscmpoll/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

// contentWidth returns the usable content width, adapting to terminal size
func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

// View renders the application
func (m Model) View() string {
	if m.shouldQuit {
		return ""
	}

	bannerLines := len(ui.Banner)
	if m.dryRun {
		bannerLines += 2 // dry run warning
	}
	statusHeight := 3 // status bar with border

	// Available height for content = total - banner - gaps - box padding - status
	availableHeight := m.height - bannerLines - 7 - statusHeight
	if availableHeight < 5 {
		availableHeight = 5
	}

	var sections []string

	sections = append(sections, ui.RenderBanner(m.dryRun))
	sections = append(sections, "")

	outerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPurple).
		Width(m.contentWidth()).
		Padding(1, 2)
	sections = append(sections, outerBox.Render(m.renderContentWithHeight(availableHeight)))

	sections = append(sections, "")
	sections = append(sections, m.renderStatusBar())

	content := strings.Join(sections, "\n")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
}

func (m Model) renderContentWithHeight(availableHeight int) string {
	switch m.screen {
	case ScreenLoading:
		return m.renderLoading()
	case ScreenChangeList:
		return m.renderChangeListWithHeight(availableHeight)
	case ScreenChangeDetail:
		return m.renderChangeDetail()
	case ScreenError:
		return m.renderError()
	default:
		return ""
	}
}

func (m Model) renderLoading() string {
	spinnerStyle := lipgloss.NewStyle().Foreground(ui.ColorCyan).Bold(true)
	return fmt.Sprintf("   %s Parsing %s...", spinnerStyle.Render(ui.Spinner(m.spinnerFrame)), m.path)
}

func (m Model) renderChangeListWithHeight(availableHeight int) string {
	var lines []string
	width := m.contentWidth() - 6

	title := fmt.Sprintf("BUILD #%d · %d CHANGES", m.changes.Build, m.changes.Len())
	lines = append(lines, ui.SectionHeader(title, ui.ColorPurple))

	filterStyle := lipgloss.NewStyle().Foreground(ui.ColorYellow)
	switch {
	case m.filtering:
		lines = append(lines, filterStyle.Render(fmt.Sprintf("  / %s█", m.filter)))
	case m.filter != "":
		lines = append(lines, filterStyle.Render(fmt.Sprintf("  filter: %s", m.filter)))
	default:
		lines = append(lines, "")
	}
	headerLines := len(lines)

	vis := m.visible()
	dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
	if len(vis) == 0 {
		if m.changes.IsEmpty() {
			lines = append(lines, dimStyle.Render("  No changes since the previous build"))
		} else {
			lines = append(lines, dimStyle.Render("  Nothing matches the filter"))
		}
	}
	for i, idx := range vis {
		lines = append(lines, ui.ChangeRow(m.changes.Records[idx], i == m.index, width))
	}

	var footer []string
	if m.changes.Truncated {
		warnStyle := lipgloss.NewStyle().Foreground(ui.ColorYellow)
		footer = append(footer, warnStyle.Render(fmt.Sprintf("  ⚠ changelog truncated at line %d", m.changes.StoppedAtLine)))
	}
	if m.errorMessage != "" {
		errStyle := lipgloss.NewStyle().Foreground(ui.ColorRed)
		footer = append(footer, errStyle.Render("  ✗ "+m.errorMessage))
	}

	visibleLines := max(availableHeight-headerLines-len(footer), 3)
	body := applyViewportScroll(lines, headerLines, headerLines+m.index, visibleLines)
	if len(footer) > 0 {
		body += "\n" + strings.Join(footer, "\n")
	}
	return body
}

func (m Model) renderChangeDetail() string {
	r, ok := m.selected()
	if !ok {
		return ""
	}
	var lines []string
	lines = append(lines, ui.SectionHeader(fmt.Sprintf("CHANGE %d/%d", m.index+1, len(m.visible())), ui.ColorCyan))
	lines = append(lines, "")
	lines = append(lines, ui.ChangeDetail(r))
	return strings.Join(lines, "\n")
}

func (m Model) renderError() string {
	var lines []string

	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorRed).Bold(true)

	lines = append(lines, "")
	lines = append(lines, errorStyle.Render("   ✗ Error"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("   %s", m.errorMessage))
	lines = append(lines, "")
	lines = append(lines, "   Press Enter to quit")

	return strings.Join(lines, "\n")
}

// applyViewportScroll scrolls content to keep the highlighted line visible
func applyViewportScroll(lines []string, headerLines int, highlightedLine int, visibleLines int) string {
	if len(lines) <= headerLines+visibleLines {
		// No scrolling needed
		return strings.Join(lines, "\n")
	}

	// Keep header lines fixed
	header := lines[:headerLines]
	content := lines[headerLines:]

	scrollOffset := 0
	if highlightedLine >= headerLines {
		highlightInContent := highlightedLine - headerLines

		// Keep some padding around the highlighted item
		padding := 2
		if highlightInContent >= visibleLines-padding {
			scrollOffset = highlightInContent - visibleLines + padding + 1
		}
		if scrollOffset > len(content)-visibleLines {
			scrollOffset = len(content) - visibleLines
		}
		if scrollOffset < 0 {
			scrollOffset = 0
		}
	}

	endOffset := min(scrollOffset+visibleLines, len(content))

	// Copy to avoid mutating the caller's lines
	visibleContent := make([]string, endOffset-scrollOffset)
	copy(visibleContent, content[scrollOffset:endOffset])

	dimStyle := lipgloss.NewStyle().Foreground(ui.ColorDarkGray)
	if scrollOffset > 0 {
		visibleContent[0] = dimStyle.Render("  ▲ more above")
	}
	if endOffset < len(content) {
		visibleContent[len(visibleContent)-1] = dimStyle.Render("  ▼ more below")
	}

	return strings.Join(append(header, visibleContent...), "\n")
}

func (m Model) renderStatusBar() string {
	var hints []string

	switch m.screen {
	case ScreenLoading:
		hints = []string{
			ui.KeyBinding("Ctrl+C", "Quit", ui.ColorRed),
		}
	case ScreenChangeList:
		if m.filtering {
			hints = []string{
				ui.KeyBinding("Type", "Filter", ui.ColorYellow),
				ui.KeyBinding("Enter", "Apply", ui.ColorGreen),
				ui.KeyBinding("Esc", "Clear", ui.ColorYellow),
			}
		} else {
			hints = []string{
				ui.KeyBinding("↑↓", "Navigate", ui.ColorWhite),
				ui.KeyBinding("Enter", "Details", ui.ColorGreen),
				ui.KeyBinding("/", "Filter", ui.ColorYellow),
				ui.KeyBinding("q", "Quit", ui.ColorRed),
			}
		}
	case ScreenChangeDetail:
		hints = []string{
			ui.KeyBinding("↑↓", "Prev/Next", ui.ColorWhite),
			ui.KeyBinding("Esc", "Back", ui.ColorYellow),
			ui.KeyBinding("q", "Quit", ui.ColorRed),
		}
	case ScreenError:
		hints = []string{
			ui.KeyBinding("Enter", "Quit", ui.ColorRed),
		}
	}

	statusStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorDarkGray).
		Padding(0, 1)

	return statusStyle.Render(strings.Join(hints, "  │  "))
}
