package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/cszczepaniak/go-istage/internal/git"
)

// renderHeader draws the one-line application header.
func (m *Model) renderHeader(d layoutDims) string {
	style := lipgloss.NewStyle().
		Background(m.theme.AccentDim).
		Foreground(m.theme.TextFg).
		Bold(true).
		Width(d.width).
		Align(lipgloss.Center)

	parts := []string{"go-istage"}
	if m.data.branch != "" {
		parts = append(parts, m.data.branch)
	}
	if m.data.loaded {
		staged, unstaged, untracked := statusCounts(m.data.status)
		summary := fmt.Sprintf("%d staged, %d unstaged", staged, unstaged)
		if untracked > 0 {
			summary += fmt.Sprintf(", %d untracked", untracked)
		}
		parts = append(parts, summary)
	}
	if m.data.state == git.StateLocked {
		parts = append(parts, "index locked")
	}

	return style.Render(ansi.Truncate(strings.Join(parts, "  •  "), d.width, "…"))
}

func (m *Model) renderSearchBar(d layoutDims) string {
	label := lipgloss.NewStyle().
		Foreground(m.theme.Accent).
		Bold(true).
		Render("Search: ")
	if m.view.showingSearch {
		return ansi.Truncate(label+m.ui.searchInput.View(), d.width, "")
	}

	query := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Render(m.view.searchQuery)
	hint := lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Render("  (esc clears)")
	return ansi.Truncate(label+query+hint, d.width, "")
}

// renderKeyHint renders one key pill plus its label.
func (m *Model) renderKeyHint(key, label string) string {
	pill := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Padding(0, 1).
		Render(key)
	text := lipgloss.NewStyle().
		Foreground(m.theme.MutedFg).
		Render(" " + label)
	return pill + text
}

// renderFooter shows the transient status line when there is one, key
// hints for the focused pane otherwise.
func (m *Model) renderFooter(d layoutDims) string {
	if m.view.statusLine != "" {
		style := lipgloss.NewStyle().Width(d.width)
		if m.view.statusIsErr {
			style = style.Foreground(m.theme.ErrorFg).Bold(true)
		} else {
			style = style.Foreground(m.theme.TextFg)
		}
		return style.Render(ansi.Truncate(" "+m.view.statusLine, d.width, "…"))
	}

	var hints []string
	if m.view.focusedPane == paneFiles {
		hints = append(hints,
			m.renderKeyHint("space", "stage/unstage file"),
			m.renderKeyHint("j/k", "move"),
		)
	} else {
		hints = append(hints,
			m.renderKeyHint("space", "stage/unstage"),
			m.renderKeyHint("s", "hunk"),
			m.renderKeyHint("f", "file"),
		)
	}

	docHint := "staged"
	if m.view.doc == docStaged {
		docHint = "working"
	}
	hints = append(hints,
		m.renderKeyHint("tab", docHint),
		m.renderKeyHint("c", "commit"),
		m.renderKeyHint("?", "help"),
	)

	return ansi.Truncate(strings.Join(hints, "  "), d.width, "")
}

// renderPaneTitle renders a pane's title line with its zoom and search
// indicators.
func (m *Model) renderPaneTitle(title string, pane, width int) string {
	if m.view.zoomedPane == pane {
		title += " (zoom)"
	}
	if pane == paneDiff && m.view.searchQuery != "" {
		title += fmt.Sprintf(" /%s/", m.view.searchQuery)
	}

	style := lipgloss.NewStyle().Bold(true)
	if m.view.focusedPane == pane {
		style = style.Foreground(m.theme.Accent)
	} else {
		style = style.Foreground(m.theme.MutedFg)
	}
	return style.Render(ansi.Truncate(title, width, "…"))
}

func (m *Model) paneStyle(pane int) lipgloss.Style {
	if m.view.focusedPane == pane {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Accent).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.theme.BorderDim).
		Padding(0, 1)
}
