package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wahlandcase/sscmpoll/internal/changelog"
	"github.com/wahlandcase/sscmpoll/internal/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func sampleChanges() *models.ChangeSet {
	set := models.NewChangeSet(7)
	set.Add(models.ChangeRecord{Path: "repo/src", Name: "main.c", Version: "3", Action: "edit", Author: "alice", Comment: "fix crash"})
	set.Add(models.ChangeRecord{Path: "repo/doc", Name: "README", Version: "1", Action: "add", Author: "bob", Comment: "docs"})
	set.Add(models.ChangeRecord{Path: "repo/old", Name: "legacy.c", Version: "9", Action: "delete", Author: "alice", Comment: "cleanup"})
	return set
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNavigateList(t *testing.T) {
	m := NewWithChanges(sampleChanges(), false)
	assert.Nil(t, m.Init())

	m = press(t, m, "down", "j")
	assert.Equal(t, 2, m.index)

	m = press(t, m, "down")
	assert.Equal(t, 0, m.index, "wraps to top")

	m = press(t, m, "k")
	assert.Equal(t, 2, m.index, "wraps to bottom")

	m = press(t, m, "g")
	assert.Equal(t, 0, m.index)
}

func TestDetailScreen(t *testing.T) {
	m := NewWithChanges(sampleChanges(), false)

	m = press(t, m, "down", "enter")
	require.Equal(t, ScreenChangeDetail, m.screen)

	view := m.View()
	assert.Contains(t, view, "repo/doc/README")
	assert.Contains(t, view, "CHANGE 2/3")

	m = press(t, m, "down")
	assert.Contains(t, m.View(), "repo/old/legacy.c")

	m = press(t, m, "esc")
	assert.Equal(t, ScreenChangeList, m.screen)
}

func TestFilter(t *testing.T) {
	m := NewWithChanges(sampleChanges(), false)

	m = press(t, m, "/", "a", "l", "i", "c", "e", "enter")
	assert.False(t, m.filtering)
	assert.Equal(t, "alice", m.filter)
	assert.Equal(t, []int{0, 2}, m.visible())

	m = press(t, m, "/", "backspace", "backspace", "backspace", "backspace", "backspace", "d", "o", "c", "s", "enter")
	assert.Equal(t, []int{1}, m.visible())

	m = press(t, m, "esc")
	assert.Empty(t, m.filter)
	assert.Len(t, m.visible(), 3)
}

func TestFilterNoMatch(t *testing.T) {
	m := NewWithChanges(sampleChanges(), false)
	m = press(t, m, "/", "z", "z", "z", "enter")

	assert.Empty(t, m.visible())
	assert.Contains(t, m.View(), "Nothing matches the filter")

	m = press(t, m, "enter")
	assert.Equal(t, ScreenChangeList, m.screen, "no detail without a selection")
}

func TestListView(t *testing.T) {
	set := sampleChanges()
	set.Truncated = true
	set.StoppedAtLine = 5
	m := NewWithChanges(set, true)

	view := m.View()
	assert.Contains(t, view, "BUILD #7")
	assert.Contains(t, view, "repo/src/main.c")
	assert.Contains(t, view, "truncated at line 5")
	assert.Contains(t, view, "DRY RUN MODE")
}

func TestEmptyView(t *testing.T) {
	m := NewWithChanges(models.NewChangeSet(1), false)
	assert.Contains(t, m.View(), "No changes since the previous build")
}

func TestLoadChangelog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.txt")
	require.NoError(t, os.WriteFile(path, []byte("total-1\n>repo>a.c>1>add>d>c>alice\n"), 0644))

	m := New(&changelog.Parser{Build: 3}, path, false)
	assert.Equal(t, ScreenLoading, m.screen)
	assert.Contains(t, m.View(), "Parsing")

	msg := loadChangelogCmd(m.parser, path)()
	next, _ := m.Update(msg)
	m = next.(Model)

	require.Equal(t, ScreenChangeList, m.screen)
	assert.Equal(t, 3, m.changes.Build)
	assert.Equal(t, 1, m.changes.Len())
}

func TestLoadChangelogMissingFile(t *testing.T) {
	m := New(nil, filepath.Join(t.TempDir(), "missing.txt"), false)

	next, _ := m.Update(loadChangelogCmd(nil, m.path)())
	m = next.(Model)

	assert.Equal(t, ScreenError, m.screen)
	assert.NotEmpty(t, m.errorMessage)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
}

func TestLoadPartialChangelog(t *testing.T) {
	m := New(nil, "changes.txt", false)
	set := models.NewChangeSet(1)
	set.Add(models.ChangeRecord{Path: "p", Name: "n"})

	next, _ := m.Update(changelogLoadedResult{changes: set, err: errors.New("disk gone")})
	m = next.(Model)

	assert.Equal(t, ScreenChangeList, m.screen)
	assert.Contains(t, m.View(), "disk gone")
}

func TestQuit(t *testing.T) {
	m := NewWithChanges(sampleChanges(), false)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.Empty(t, next.(Model).View())
}

func TestApplyViewportScroll(t *testing.T) {
	lines := []string{"header", "a", "b", "c", "d", "e", "f"}

	assert.Equal(t, "header\na\nb", applyViewportScroll(lines[:3], 1, 1, 5))

	out := applyViewportScroll(lines, 1, 6, 3)
	assert.Contains(t, out, "more above")
	assert.Contains(t, out, "f")
}
