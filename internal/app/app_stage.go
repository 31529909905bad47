package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/app/screen"
	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/patch"
	"github.com/cszczepaniak/go-istage/internal/selection"
)

// toggleCurrentRow stages or unstages whatever is under the diff
// cursor: a single line, a whole hunk, or a whole file.
func (m *Model) toggleCurrentRow() tea.Cmd {
	row, ok := m.cursorRow()
	if !ok {
		return nil
	}
	switch row.kind {
	case rowLine:
		pos := selection.Position{File: row.fileIdx, Hunk: row.hunkIdx, Line: row.lineIdx}
		return m.applyToggle(row.fileIdx, func(files []diff.File) error {
			return m.sel.ToggleLine(files, pos)
		})
	case rowHunkHeader:
		return m.toggleHunkAt(row.fileIdx, row.hunkIdx)
	case rowFileHeader, rowBinaryNote:
		return m.toggleFileAt(row.fileIdx)
	}
	return nil
}

// toggleCurrentHunk stages or unstages the hunk containing the cursor.
func (m *Model) toggleCurrentHunk() tea.Cmd {
	row, ok := m.cursorRow()
	if !ok || row.hunkIdx < 0 {
		return nil
	}
	return m.toggleHunkAt(row.fileIdx, row.hunkIdx)
}

// toggleCurrentFile stages or unstages the file containing the cursor.
func (m *Model) toggleCurrentFile() tea.Cmd {
	row, ok := m.cursorRow()
	if !ok {
		return nil
	}
	return m.toggleFileAt(row.fileIdx)
}

func (m *Model) toggleHunkAt(fileIdx, hunkIdx int) tea.Cmd {
	return m.applyToggle(fileIdx, func(files []diff.File) error {
		m.sel.ToggleHunk(files, fileIdx, hunkIdx)
		return nil
	})
}

func (m *Model) toggleFileAt(fileIdx int) tea.Cmd {
	files := m.activeFiles()
	if fileIdx < 0 || fileIdx >= len(files) {
		return nil
	}
	if files[fileIdx].Binary {
		return m.toggleBinaryFile(files[fileIdx])
	}
	return m.applyToggle(fileIdx, func(files []diff.File) error {
		m.sel.ToggleFile(files, fileIdx)
		return nil
	})
}

// toggleBinaryFile stages or unstages a binary file whole; there is no
// line-level patch to build for it.
func (m *Model) toggleBinaryFile(f diff.File) tea.Cmd {
	var err error
	if m.view.doc == docStaged {
		err = m.repo.UnstagePath(m.ctx, f.Path())
	} else {
		err = m.repo.StagePath(m.ctx, f.Path())
	}
	if err != nil {
		return m.setStatusError(fmt.Sprintf("apply failed: %v", err))
	}
	return m.refreshAfterApply()
}

// applyToggle runs one toggle against the selection, synthesizes the
// patch for the touched file and applies it to the index immediately.
// On a rejected apply the selection rolls back to its pre-toggle state
// and the diff model is left alone.
func (m *Model) applyToggle(fileIdx int, toggle func(files []diff.File) error) tea.Cmd {
	files := m.activeFiles()
	if fileIdx < 0 || fileIdx >= len(files) {
		return nil
	}

	snap := m.sel.Snapshot()
	if err := toggle(files); err != nil {
		if errors.Is(err, selection.ErrNotToggleable) {
			return nil
		}
		return m.setStatusError(err.Error())
	}

	selected := m.sel.CurrentSelection(files, fileIdx)
	if len(selected) == 0 {
		// The toggle deselected everything in this file; nothing to apply.
		m.sel.Restore(snap)
		return nil
	}

	var patchText string
	var err error
	if m.view.doc == docStaged {
		patchText, err = patch.Invert(files[fileIdx], selected)
	} else {
		patchText, err = patch.Build(files[fileIdx], selected)
	}
	if err != nil {
		m.sel.Restore(snap)
		if errors.Is(err, patch.ErrEmpty) {
			return nil
		}
		return m.setStatusError(err.Error())
	}

	if m.view.doc == docStaged {
		err = m.repo.ApplyToIndexReverse(m.ctx, patchText)
	} else {
		err = m.repo.ApplyToIndex(m.ctx, patchText)
	}
	if err != nil {
		m.sel.Restore(snap)
		return m.setStatusError(fmt.Sprintf("apply failed: %v", err))
	}

	return m.refreshAfterApply()
}

// refreshAfterApply reloads the snapshot synchronously so the keystroke
// that staged something also shows the result. The selection is cleared
// first: the applied lines moved across the index, and their positions
// in the new model mean something else.
func (m *Model) refreshAfterApply() tea.Cmd {
	m.sel.Clear()
	snap, err := m.fetchSnapshot()
	if err != nil {
		return m.failSnapshot(err)
	}
	m.installSnapshot(snap)
	return nil
}

// currentFileIndex is the file the user is pointing at: the table row
// when the files pane has focus, the diff cursor's file otherwise.
func (m *Model) currentFileIndex() int {
	files := m.activeFiles()
	if len(files) == 0 {
		return -1
	}
	if m.view.focusedPane == paneFiles {
		if idx := m.ui.fileTable.Cursor(); idx >= 0 && idx < len(files) {
			return idx
		}
		return -1
	}
	row, ok := m.cursorRow()
	if !ok || row.fileIdx < 0 || row.fileIdx >= len(files) {
		return -1
	}
	return row.fileIdx
}

// promptDiscard asks for confirmation before throwing away the working
// tree changes of the file under the cursor.
func (m *Model) promptDiscard() tea.Cmd {
	if m.view.doc == docStaged {
		return m.setStatusError("switch to the working diff to discard changes")
	}
	files := m.activeFiles()
	idx := m.currentFileIndex()
	if idx < 0 || idx >= len(files) {
		return nil
	}
	path := files[idx].Path()
	untracked := files[idx].Untracked

	confirm := screen.NewConfirmScreen(
		fmt.Sprintf("Discard changes to %s? This cannot be undone.", path),
		m.theme,
	)
	confirm.OnConfirm = func() tea.Cmd { return m.discardCmd(path, untracked) }
	m.screens.Push(confirm)
	return nil
}

func (m *Model) discardCmd(path string, untracked bool) tea.Cmd {
	return func() tea.Msg {
		msg := discardDoneMsg{path: path}
		if msg.err = m.repo.DiscardPath(m.ctx, path, untracked); msg.err != nil {
			return msg
		}
		msg.snap, msg.snapErr = m.fetchSnapshot()
		return msg
	}
}

// promptCommit opens the commit screen when the index has content.
func (m *Model) promptCommit() tea.Cmd {
	staged := m.stagedEntries()
	if len(staged) == 0 {
		return m.setStatusError("nothing staged to commit")
	}
	commit := screen.NewCommitScreen(staged, m.data.branch, m.theme)
	commit.OnSubmit = func(message string) tea.Cmd { return m.commitCmd(message) }
	m.screens.Push(commit)
	return textinput.Blink
}

func (m *Model) commitCmd(message string) tea.Cmd {
	return func() tea.Msg {
		msg := commitDoneMsg{}
		if msg.err = m.repo.Commit(m.ctx, message); msg.err != nil {
			return msg
		}
		msg.snap, msg.snapErr = m.fetchSnapshot()
		return msg
	}
}
