package app

// moveCursor moves the diff cursor by delta visible rows.
func (m *Model) moveCursor(delta int) {
	if len(m.data.visible) == 0 {
		return
	}
	m.data.cursor = clampInt(m.data.cursor+delta, 0, len(m.data.visible)-1)
	m.ensureCursorVisible()
	m.syncTableToCursor()
}

func (m *Model) cursorToTop() {
	m.data.cursor = 0
	m.data.startLine = 0
	m.syncTableToCursor()
}

func (m *Model) cursorToBottom() {
	if len(m.data.visible) == 0 {
		return
	}
	m.data.cursor = len(m.data.visible) - 1
	m.ensureCursorVisible()
	m.syncTableToCursor()
}

// jumpStarts moves the cursor to the nearest position in starts beyond
// it. No wrapping at either end.
func (m *Model) jumpStarts(starts []int, backward bool) {
	if len(starts) == 0 {
		return
	}
	cur := m.data.cursor
	if backward {
		for i := len(starts) - 1; i >= 0; i-- {
			if starts[i] < cur {
				m.data.cursor = starts[i]
				break
			}
		}
	} else {
		for _, s := range starts {
			if s > cur {
				m.data.cursor = s
				break
			}
		}
	}
	m.ensureCursorVisible()
	m.syncTableToCursor()
}

func (m *Model) jumpHunk(backward bool) {
	m.jumpStarts(m.data.hunkStarts, backward)
}

func (m *Model) jumpFile(backward bool) {
	m.jumpStarts(m.data.fileStarts, backward)
}

func (m *Model) halfPage(down bool) {
	step := maxInt(1, m.view.diffPageRows/2)
	if !down {
		step = -step
	}
	m.moveCursor(step)
}

func (m *Model) fullPage(down bool) {
	step := maxInt(1, m.view.diffPageRows)
	if !down {
		step = -step
	}
	m.moveCursor(step)
}

// ensureCursorVisible scrolls the diff window so the cursor is inside it.
func (m *Model) ensureCursorVisible() {
	page := maxInt(1, m.view.diffPageRows)
	if m.data.cursor < m.data.startLine {
		m.data.startLine = m.data.cursor
	}
	if m.data.cursor >= m.data.startLine+page {
		m.data.startLine = m.data.cursor - page + 1
	}
	m.clampStartLine()
}

func (m *Model) clampStartLine() {
	page := maxInt(1, m.view.diffPageRows)
	maxStart := maxInt(0, len(m.data.visible)-page)
	m.data.startLine = clampInt(m.data.startLine, 0, maxStart)
}

// syncTableToCursor keeps the file table pointed at the file under the
// diff cursor.
func (m *Model) syncTableToCursor() {
	row, ok := m.cursorRow()
	if !ok {
		return
	}
	if row.fileIdx >= 0 && row.fileIdx < len(m.ui.fileTable.Rows()) {
		m.ui.fileTable.SetCursor(row.fileIdx)
	}
}

// jumpDiffToFileIndex puts the diff cursor on the header of the given
// file, when search narrowing still shows it.
func (m *Model) jumpDiffToFileIndex(fileIdx int) {
	for _, pos := range m.data.fileStarts {
		row := m.data.rows[m.data.visible[pos]]
		if row.fileIdx == fileIdx {
			m.data.cursor = pos
			m.ensureCursorVisible()
			return
		}
	}
}

func (m *Model) cursorFilePath() string {
	row, ok := m.cursorRow()
	if !ok {
		return ""
	}
	files := m.activeFiles()
	if row.fileIdx < 0 || row.fileIdx >= len(files) {
		return ""
	}
	return files[row.fileIdx].Path()
}

func (m *Model) jumpDiffToPath(path string) {
	if path == "" {
		return
	}
	files := m.activeFiles()
	for _, pos := range m.data.fileStarts {
		row := m.data.rows[m.data.visible[pos]]
		if row.fileIdx < len(files) && files[row.fileIdx].Path() == path {
			m.data.cursor = pos
			m.ensureCursorVisible()
			m.syncTableToCursor()
			return
		}
	}
}

// switchDocument flips between the working and staged documents. The
// cursor lands on the same file when the other document has it, and the
// selection is dropped because positions do not carry across documents.
func (m *Model) switchDocument(doc document) {
	if doc == m.view.doc {
		return
	}
	keepPath := m.cursorFilePath()
	m.view.doc = doc
	m.sel.Clear()
	m.data.cursor = 0
	m.data.startLine = 0
	m.rebuildRows()
	m.syncFileTable()
	m.jumpDiffToPath(keepPath)
	m.syncTableToCursor()
}

func (m *Model) toggleDocument() {
	if m.view.doc == docWorking {
		m.switchDocument(docStaged)
	} else {
		m.switchDocument(docWorking)
	}
}

// setFocusedPane moves focus; an active zoom follows it.
func (m *Model) setFocusedPane(pane int) {
	if m.view.focusedPane == pane {
		return
	}
	m.view.focusedPane = pane
	if m.view.zoomedPane >= 0 {
		m.view.zoomedPane = pane
	}
	if pane == paneFiles {
		m.ui.fileTable.Focus()
	} else {
		m.ui.fileTable.Blur()
	}
	m.applyLayout()
}

func (m *Model) toggleZoom() {
	if m.view.zoomedPane >= 0 {
		m.view.zoomedPane = -1
	} else {
		m.view.zoomedPane = m.view.focusedPane
	}
	m.applyLayout()
}
