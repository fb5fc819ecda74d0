package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.screen != ScreenLoading {
			return m, nil
		}
		m.spinnerFrame = (m.spinnerFrame + 1) % 10
		return m, tickCmd()

	case changelogLoadedResult:
		return m.handleChangelogLoaded(msg)
	}

	return m, nil
}

func (m Model) handleChangelogLoaded(msg changelogLoadedResult) (tea.Model, tea.Cmd) {
	// A read error still carries the records parsed before it
	if msg.err != nil && msg.changes == nil {
		m.errorMessage = msg.err.Error()
		m.screen = ScreenError
		return m, nil
	}
	m.changes = msg.changes
	m.index = 0
	m.screen = ScreenChangeList
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
	}
	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.shouldQuit = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenChangeList:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleChangeListKey(msg)
	case ScreenChangeDetail:
		return m.handleChangeDetailKey(msg)
	case ScreenError:
		return m.handleErrorKey(msg)
	}

	return m, nil
}

func (m Model) handleChangeListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.visible())

	switch msg.String() {
	case "q":
		m.shouldQuit = true
		return m, tea.Quit
	case "up", "k":
		if m.index > 0 {
			m.index--
		} else if count > 0 {
			m.index = count - 1 // Wrap to bottom
		}
	case "down", "j":
		if m.index < count-1 {
			m.index++
		} else {
			m.index = 0 // Wrap to top
		}
	case "g", "home":
		m.index = 0
	case "G", "end":
		m.index = max(count-1, 0)
	case "/":
		m.filtering = true
	case "esc":
		m.filter = ""
		m.index = 0
	case "enter":
		if _, ok := m.selected(); ok {
			m.screen = ScreenChangeDetail
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.filter += " "
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
	}
	m.index = 0
	return m, nil
}

func (m Model) handleChangeDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.visible())

	switch msg.String() {
	case "q":
		m.shouldQuit = true
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.screen = ScreenChangeList
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
	case "down", "j":
		if m.index < count-1 {
			m.index++
		}
	}
	return m, nil
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "enter", "esc":
		m.shouldQuit = true
		return m, tea.Quit
	}
	return m, nil
}
