package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/muesli/reflow/wrap"
)

// renderBody lays the two panes side by side, or just the zoomed one.
func (m *Model) renderBody(d layoutDims) string {
	switch m.view.zoomedPane {
	case paneFiles:
		return m.renderFilesPane(d, d.filesWidth)
	case paneDiff:
		return m.renderDiffPane(d, d.diffWidth)
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderFilesPane(d, d.filesWidth),
		m.renderDiffPane(d, d.diffWidth),
	)
}

func (m *Model) renderFilesPane(d layoutDims, width int) string {
	title := "Unstaged files"
	if m.view.doc == docStaged {
		title = "Staged files"
	}
	inner := maxInt(10, width-4)

	content := m.ui.fileTable.View()
	if len(m.activeFiles()) == 0 {
		empty := "nothing to stage"
		if m.view.doc == docStaged {
			empty = "nothing staged"
		}
		content = lipgloss.NewStyle().
			Foreground(m.theme.MutedFg).
			Render(empty)
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderPaneTitle(title, paneFiles, inner),
		content,
	)
	return m.paneStyle(paneFiles).
		Width(width - 2).
		Height(d.bodyHeight - 2).
		MaxHeight(d.bodyHeight).
		Render(body)
}

func (m *Model) renderDiffPane(d layoutDims, width int) string {
	title := "Working diff"
	if m.view.doc == docStaged {
		title = "Staged diff"
	}
	inner := maxInt(10, width-4)

	var content string
	if len(m.data.visible) == 0 {
		content = m.renderDiffEmpty(inner)
	} else {
		content = m.renderDiffRows(inner)
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderPaneTitle(title, paneDiff, inner),
		content,
	)
	return m.paneStyle(paneDiff).
		Width(width - 2).
		Height(d.bodyHeight - 2).
		MaxHeight(d.bodyHeight).
		Render(body)
}

// renderDiffRows renders the window of visible rows starting at
// startLine.
func (m *Model) renderDiffRows(width int) string {
	rows := make([]string, 0, m.view.diffPageRows)
	end := minInt(len(m.data.visible), m.data.startLine+m.view.diffPageRows)
	for pos := m.data.startLine; pos < end; pos++ {
		rows = append(rows, m.renderDiffRow(pos, width))
	}
	return strings.Join(rows, "\n")
}

// renderDiffRow renders one row, with the cursor row highlighted while
// the diff pane has focus.
func (m *Model) renderDiffRow(pos, width int) string {
	row := m.data.rows[m.data.visible[pos]]

	var style lipgloss.Style
	text := row.text

	switch row.kind {
	case rowFileHeader:
		style = lipgloss.NewStyle().
			Foreground(m.theme.Accent).
			Bold(true)
	case rowHunkHeader:
		style = lipgloss.NewStyle().Foreground(m.theme.HunkFg)
	case rowBinaryNote, rowNoNewline:
		style = lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	case rowLine:
		line := m.activeFiles()[row.fileIdx].Hunks[row.hunkIdx].Lines[row.lineIdx]
		text = string(line.Kind.Marker()) + line.Text
		switch line.Kind {
		case diff.Addition:
			style = lipgloss.NewStyle().Foreground(m.theme.AddedFg)
		case diff.Deletion:
			style = lipgloss.NewStyle().Foreground(m.theme.RemovedFg)
		default:
			style = lipgloss.NewStyle().Foreground(m.theme.TextFg)
		}
	}

	out := ansi.Truncate(strings.ReplaceAll(text, "\t", "    "), width, "…")
	if pos == m.data.cursor && m.view.focusedPane == paneDiff {
		return style.
			Background(m.theme.AccentDim).
			Bold(true).
			Width(width).
			Render(out)
	}
	return style.Width(width).Render(out)
}

// renderDiffEmpty explains why the diff pane has nothing to show.
func (m *Model) renderDiffEmpty(width int) string {
	if m.data.loadErr != nil {
		return lipgloss.NewStyle().
			Foreground(m.theme.ErrorFg).
			Render(wrap.String(fmt.Sprintf("Could not load the diff: %v. Press r to retry.", m.data.loadErr), maxInt(20, width)))
	}

	var text string
	switch {
	case !m.data.loaded:
		text = "Loading diff..."
	case m.view.searchQuery != "":
		text = fmt.Sprintf("No rows match %q. Esc clears the search.", m.view.searchQuery)
	case m.view.doc == docStaged:
		text = "The index is empty. Switch to the working diff with tab and stage some lines."
	default:
		text = "The working tree is clean. Anything already staged is in the staged diff on tab."
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Render(wrap.String(text, maxInt(20, width)))
}
