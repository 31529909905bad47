package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/app/screen"
)

const (
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keyEscRaw = "\x1b"
	keySpace  = " "
	keyTab    = "tab"
	keyUp     = "up"
	keyDown   = "down"
)

func isEscKey(key string) bool {
	return key == keyEsc || key == keyEscRaw
}

// handleScreenKey routes keys to the active modal screen. A screen
// returning nil closes itself.
func (m *Model) handleScreenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.screens.Current()
	if cur == nil {
		return m, nil
	}
	next, cmd := cur.Update(msg)
	if next == nil {
		m.screens.Pop()
	}
	return m, cmd
}

// handleKeyMsg processes keyboard input when no modal screen is up.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view.showingSearch {
		return m.handleSearchInput(msg)
	}

	key := msg.String()
	switch key {
	case keyCtrlC, "q":
		return m.quit()

	case "?":
		m.screens.Push(screen.NewHelpScreen(m.view.windowWidth, m.view.windowHeight, m.theme, m.config.ShowIcons))
		return m, nil

	case "c":
		return m, m.promptCommit()

	case "d":
		return m, m.promptDiscard()

	case "r":
		return m, m.loadSnapshot()

	case keyTab, "t":
		m.toggleDocument()
		return m, nil

	case "1":
		m.switchDocument(docWorking)
		return m, nil

	case "2":
		m.switchDocument(docStaged)
		return m, nil

	case "h":
		m.setFocusedPane(paneFiles)
		return m, nil

	case "l":
		m.setFocusedPane(paneDiff)
		return m, nil

	case "=":
		m.toggleZoom()
		return m, nil

	case "/":
		m.view.showingSearch = true
		m.ui.searchInput.SetValue(m.view.searchQuery)
		m.ui.searchInput.CursorEnd()
		m.applyLayout()
		return m, m.ui.searchInput.Focus()
	}

	if isEscKey(key) {
		m.clearSearch()
		return m, nil
	}

	if m.view.focusedPane == paneFiles {
		return m.handleFilesKey(msg)
	}
	return m.handleDiffKey(msg)
}

// handleFilesKey moves through the file table; the diff pane follows.
func (m *Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", keyDown, "k", keyUp:
		var cmd tea.Cmd
		m.ui.fileTable, cmd = m.ui.fileTable.Update(msg)
		m.jumpDiffToFileIndex(m.ui.fileTable.Cursor())
		return m, cmd

	case "g":
		m.ui.fileTable.GotoTop()
		m.jumpDiffToFileIndex(m.ui.fileTable.Cursor())
		return m, nil

	case "G":
		m.ui.fileTable.GotoBottom()
		m.jumpDiffToFileIndex(m.ui.fileTable.Cursor())
		return m, nil

	case keySpace, keyEnter:
		return m, m.toggleFileAt(m.ui.fileTable.Cursor())
	}
	return m, nil
}

// handleDiffKey moves through the flattened diff and toggles at the
// cursor.
func (m *Model) handleDiffKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", keyDown:
		m.moveCursor(1)
	case "k", keyUp:
		m.moveCursor(-1)
	case "g":
		m.cursorToTop()
	case "G":
		m.cursorToBottom()
	case "ctrl+d":
		m.halfPage(true)
	case "ctrl+u":
		m.halfPage(false)
	case "pgdown":
		m.fullPage(true)
	case "pgup":
		m.fullPage(false)
	case "]":
		m.jumpHunk(false)
	case "[":
		m.jumpHunk(true)
	case "}":
		m.jumpFile(false)
	case "{":
		m.jumpFile(true)
	case keySpace, keyEnter:
		return m, m.toggleCurrentRow()
	case "s":
		return m, m.toggleCurrentHunk()
	case "f":
		return m, m.toggleCurrentFile()
	}
	return m, nil
}

// handleSearchInput feeds keys to the search box while it is open. The
// narrowing applies live on every keystroke; enter keeps the query,
// escape drops it.
func (m *Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyEnter {
		m.view.showingSearch = false
		m.ui.searchInput.Blur()
		m.applyLayout()
		return m, nil
	}
	if isEscKey(key) || key == keyCtrlC {
		m.view.showingSearch = false
		m.ui.searchInput.Blur()
		m.clearSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.ui.searchInput, cmd = m.ui.searchInput.Update(msg)
	m.setSearchQuery(m.ui.searchInput.Value())
	return m, cmd
}

func (m *Model) setSearchQuery(query string) {
	if query == m.view.searchQuery {
		return
	}
	m.view.searchQuery = query
	m.rebuildVisible()
	if strings.TrimSpace(query) != "" {
		m.data.cursor = m.firstMatch()
		m.data.startLine = 0
	}
	m.ensureCursorVisible()
	m.syncTableToCursor()
}

// firstMatch is the first visible row whose own text matches the query,
// skipping headers pulled in only for context.
func (m *Model) firstMatch() int {
	q := strings.ToLower(strings.TrimSpace(m.view.searchQuery))
	for pos, ri := range m.data.visible {
		if strings.Contains(strings.ToLower(m.data.rows[ri].text), q) {
			return pos
		}
	}
	return 0
}

func (m *Model) clearSearch() {
	m.ui.searchInput.SetValue("")
	m.ui.searchInput.CursorEnd()
	if m.view.searchQuery == "" {
		m.applyLayout()
		return
	}
	m.view.searchQuery = ""
	m.rebuildVisible()
	m.ensureCursorVisible()
	m.syncTableToCursor()
	m.applyLayout()
}
