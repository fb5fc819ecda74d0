// Package app is the interactive changelog browser.
package app

import (
	"strings"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/changelog"
	"github.com/wahlandcase/sscmpoll/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the browser state
type Model struct {
	// Source
	parser *changelog.Parser
	path   string
	dryRun bool

	// Navigation
	screen     Screen
	index      int // Position within visible()
	shouldQuit bool

	// Data
	changes *models.ChangeSet

	// Filter
	filter    string
	filtering bool

	// UI state
	errorMessage string
	spinnerFrame int

	// Window size
	width  int
	height int
}

// New creates a browser that parses the changelog at path on start
func New(parser *changelog.Parser, path string, dryRun bool) Model {
	return Model{
		parser: parser,
		path:   path,
		dryRun: dryRun,
		screen: ScreenLoading,
		width:  80,
		height: 24,
	}
}

// NewWithChanges creates a browser over an already parsed change set
func NewWithChanges(set *models.ChangeSet, dryRun bool) Model {
	return Model{
		dryRun:  dryRun,
		screen:  ScreenChangeList,
		changes: set,
		width:   80,
		height:  24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.changes != nil {
		return nil
	}
	return tea.Batch(tickCmd(), loadChangelogCmd(m.parser, m.path))
}

// tickMsg is sent on each tick while loading
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// visible returns the indices of records matching the filter
func (m Model) visible() []int {
	if m.changes == nil {
		return nil
	}
	needle := strings.ToLower(m.filter)
	var out []int
	for i, r := range m.changes.Records {
		if needle == "" || matches(r, needle) {
			out = append(out, i)
		}
	}
	return out
}

func matches(r models.ChangeRecord, needle string) bool {
	for _, field := range []string{r.AffectedFile(), r.Author, r.Comment, r.Action} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// selected returns the highlighted record
func (m Model) selected() (models.ChangeRecord, bool) {
	vis := m.visible()
	if m.index < 0 || m.index >= len(vis) {
		return models.ChangeRecord{}, false
	}
	return m.changes.Records[vis[m.index]], true
}
