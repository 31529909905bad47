package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/cszczepaniak/go-istage/internal/app/screen"
)

// View renders the full frame: header, optional search bar, the two
// panes and the footer, with any modal screen spliced on top.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.view.windowWidth == 0 {
		return "Loading..."
	}

	d := m.computeLayout()

	sections := []string{m.renderHeader(d)}
	if d.searchHeight > 0 {
		sections = append(sections, m.renderSearchBar(d))
	}
	sections = append(sections, m.renderBody(d), m.renderFooter(d))

	base := lipgloss.JoinVertical(lipgloss.Left, sections...)
	base = truncateToHeight(base, d.height)

	if m.screens.IsActive() {
		cur := m.screens.Current()
		switch s := cur.(type) {
		case *screen.HelpScreen:
			s.SetSize(d.width, d.height)
			return m.overlayPopup(base, s.View(), 2)
		case *screen.ConfirmScreen:
			return m.overlayPopup(base, s.View(), 3)
		default:
			return m.overlayPopup(base, cur.View(), 2)
		}
	}

	return base
}

// overlayPopup splices popup over the middle of base, keeping at least
// margin rows and columns of base visible around it. The splice is
// ANSI-aware so styled base lines survive being cut.
func (m *Model) overlayPopup(base, popup string, margin int) string {
	baseLines := strings.Split(base, "\n")
	popupLines := strings.Split(popup, "\n")

	width := m.view.windowWidth
	height := len(baseLines)

	maxPopupHeight := maxInt(1, height-margin*2)
	if len(popupLines) > maxPopupHeight {
		popupLines = popupLines[:maxPopupHeight]
	}

	popupWidth := 0
	for _, line := range popupLines {
		if w := lipgloss.Width(line); w > popupWidth {
			popupWidth = w
		}
	}
	popupWidth = minInt(popupWidth, maxInt(1, width-margin*2))

	top := maxInt(margin, (height-len(popupLines))/2)
	left := maxInt(margin, (width-popupWidth)/2)

	for i, pline := range popupLines {
		y := top + i
		if y >= len(baseLines) {
			break
		}
		baseLine := baseLines[y]
		if w := lipgloss.Width(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}

		leftPart := ansi.Truncate(baseLine, left, "")
		rightPart := ansi.TruncateLeft(baseLine, left+popupWidth, "")

		pl := ansi.Truncate(pline, popupWidth, "")
		if w := lipgloss.Width(pl); w < popupWidth {
			pl += strings.Repeat(" ", popupWidth-w)
		}

		baseLines[y] = leftPart + pl + rightPart
	}

	return strings.Join(baseLines, "\n")
}

func truncateToHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= height {
		return s
	}
	return strings.Join(lines[:height], "\n")
}
