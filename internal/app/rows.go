package app

import (
	"fmt"
	"strings"

	"github.com/cszczepaniak/go-istage/internal/diff"
)

type rowKind int

const (
	rowFileHeader rowKind = iota
	rowHunkHeader
	rowLine
	rowBinaryNote
	rowNoNewline
)

// diffRow is one renderable row of the flattened diff. fileIdx always
// points into the active document's files; hunkIdx and lineIdx are -1
// for rows outside a hunk or a line.
type diffRow struct {
	kind    rowKind
	fileIdx int
	hunkIdx int
	lineIdx int
	text    string
}

func fileHeaderText(f diff.File) string {
	path := f.Path()
	if f.Kind == diff.FileRenamed || f.Kind == diff.FileCopied {
		path = f.OldPath + " -> " + f.NewPath
	}
	if f.Binary {
		return fmt.Sprintf("%s %s (binary)", f.Kind, path)
	}
	adds, dels := f.Stats()
	return fmt.Sprintf("%s %s (+%d -%d)", f.Kind, path, adds, dels)
}

// buildRows flattens a diff model into one row per rendered line.
func buildRows(files []diff.File) []diffRow {
	var rows []diffRow
	for fi, f := range files {
		rows = append(rows, diffRow{
			kind:    rowFileHeader,
			fileIdx: fi,
			hunkIdx: -1,
			lineIdx: -1,
			text:    fileHeaderText(f),
		})
		if f.Binary {
			rows = append(rows, diffRow{
				kind:    rowBinaryNote,
				fileIdx: fi,
				hunkIdx: -1,
				lineIdx: -1,
				text:    "binary file, staged and unstaged as a whole",
			})
			continue
		}
		for hi, h := range f.Hunks {
			rows = append(rows, diffRow{
				kind:    rowHunkHeader,
				fileIdx: fi,
				hunkIdx: hi,
				lineIdx: -1,
				text:    h.Header(),
			})
			for li, line := range h.Lines {
				rows = append(rows, diffRow{
					kind:    rowLine,
					fileIdx: fi,
					hunkIdx: hi,
					lineIdx: li,
					text:    line.Text,
				})
				if line.NoNewline {
					rows = append(rows, diffRow{
						kind:    rowNoNewline,
						fileIdx: fi,
						hunkIdx: hi,
						lineIdx: li,
						text:    `\ No newline at end of file`,
					})
				}
			}
		}
	}
	return rows
}

// rebuildVisible recomputes the visible row positions from the search
// query. A matching row pulls in the file and hunk headers above it so
// the narrowed view keeps its context.
func (m *Model) rebuildVisible() {
	rows := m.data.rows
	query := strings.ToLower(strings.TrimSpace(m.view.searchQuery))

	m.data.visible = m.data.visible[:0]
	if query == "" {
		for i := range rows {
			m.data.visible = append(m.data.visible, i)
		}
	} else {
		lastFile, lastHunk := -1, -1
		addedFile, addedHunk := -1, -1
		for i, row := range rows {
			switch row.kind {
			case rowFileHeader:
				lastFile, lastHunk = i, -1
			case rowHunkHeader:
				lastHunk = i
			}
			if !strings.Contains(strings.ToLower(row.text), query) {
				continue
			}
			if lastFile >= 0 && lastFile != i && addedFile != lastFile {
				m.data.visible = append(m.data.visible, lastFile)
				addedFile = lastFile
			}
			if lastHunk >= 0 && lastHunk != i && addedHunk != lastHunk {
				m.data.visible = append(m.data.visible, lastHunk)
				addedHunk = lastHunk
			}
			m.data.visible = append(m.data.visible, i)
			switch row.kind {
			case rowFileHeader:
				addedFile = i
			case rowHunkHeader:
				addedHunk = i
			}
		}
	}

	m.data.fileStarts = m.data.fileStarts[:0]
	m.data.hunkStarts = m.data.hunkStarts[:0]
	for pos, ri := range m.data.visible {
		switch rows[ri].kind {
		case rowFileHeader:
			m.data.fileStarts = append(m.data.fileStarts, pos)
		case rowHunkHeader:
			m.data.hunkStarts = append(m.data.hunkStarts, pos)
		}
	}

	if m.data.cursor >= len(m.data.visible) {
		m.data.cursor = len(m.data.visible) - 1
	}
	if m.data.cursor < 0 {
		m.data.cursor = 0
	}
	m.clampStartLine()
}

// rebuildRows reflattens the active document and renarrows it.
func (m *Model) rebuildRows() {
	m.data.rows = buildRows(m.activeFiles())
	m.rebuildVisible()
	m.ensureCursorVisible()
}

func (m *Model) cursorRow() (diffRow, bool) {
	if m.data.cursor < 0 || m.data.cursor >= len(m.data.visible) {
		return diffRow{}, false
	}
	return m.data.rows[m.data.visible[m.data.cursor]], true
}
