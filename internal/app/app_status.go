package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/models"
)

// statusCounts summarizes porcelain status for the header.
func statusCounts(files []models.StatusFile) (staged, unstaged, untracked int) {
	for _, f := range files {
		if f.Untracked() {
			untracked++
			continue
		}
		if f.HasIndexChanges() {
			staged++
		}
		if f.HasWorktreeChanges() {
			unstaged++
		}
	}
	return staged, unstaged, untracked
}

// stagedEntries returns the status entries with index changes, shown in
// the commit screen summary.
func (m *Model) stagedEntries() []models.StatusFile {
	var out []models.StatusFile
	for _, f := range m.data.status {
		if f.HasIndexChanges() {
			out = append(out, f)
		}
	}
	return out
}

// statusLetter is the porcelain letter for a diff file, looked up from
// status by path so it reads the way git reports it.
func (m *Model) statusLetter(f diff.File) byte {
	path := f.Path()
	staged := m.view.doc == docStaged
	for _, sf := range m.data.status {
		if sf.Path == path || sf.OrigPath == path {
			return sf.Letter(staged)
		}
	}
	switch f.Kind {
	case diff.FileAdded:
		return 'A'
	case diff.FileDeleted:
		return 'D'
	case diff.FileRenamed:
		return 'R'
	case diff.FileCopied:
		return 'C'
	}
	return 'M'
}

// syncFileTable rebuilds the file table rows from the active document.
// The table always lists every file of the document, so row index and
// file index are the same thing.
func (m *Model) syncFileTable() {
	files := m.activeFiles()
	rows := make([]table.Row, 0, len(files))
	for _, f := range files {
		letter := string(m.statusLetter(f))

		name := f.Path()
		if f.Kind == diff.FileRenamed || f.Kind == diff.FileCopied {
			name = f.OldPath + " -> " + f.NewPath
		}
		if m.config.ShowIcons {
			name = iconWithSpace(deviconForName(f.Path())) + name
		}

		change := "bin"
		if !f.Binary {
			adds, dels := f.Stats()
			change = fmt.Sprintf("+%d -%d", adds, dels)
		}

		rows = append(rows, table.Row{letter, name, change})
	}

	m.ui.fileTable.SetRows(rows)
	if m.ui.fileTable.Cursor() >= len(rows) {
		m.ui.fileTable.SetCursor(maxInt(0, len(rows)-1))
	}
	m.syncTableToCursor()
}
