package app

import (
	"github.com/wahlandcase/sscmpoll/internal/changelog"
	"github.com/wahlandcase/sscmpoll/internal/models"

	tea "github.com/charmbracelet/bubbletea"
)

// Message types for async operations

type changelogLoadedResult struct {
	changes *models.ChangeSet
	err     error
}

// loadChangelogCmd parses the changelog file in the background
func loadChangelogCmd(parser *changelog.Parser, path string) tea.Cmd {
	return func() tea.Msg {
		if parser == nil {
			parser = &changelog.Parser{}
		}
		set, err := parser.ParseFile(path)
		return changelogLoadedResult{changes: set, err: err}
	}
}
