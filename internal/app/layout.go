package app

import "github.com/charmbracelet/bubbles/table"

// layoutDims holds the derived sizes for one render. Pane widths are
// outer widths, borders included; inner sizes are what fits inside
// border and padding.
type layoutDims struct {
	width  int
	height int

	headerHeight int
	footerHeight int
	searchHeight int
	bodyHeight   int

	filesWidth int
	diffWidth  int

	filesInnerWidth  int
	filesInnerHeight int
	diffInnerWidth   int
	diffInnerHeight  int
}

// computeLayout derives every pane dimension from the window size.
func (m *Model) computeLayout() layoutDims {
	d := layoutDims{
		width:  m.view.windowWidth,
		height: m.view.windowHeight,
	}
	if d.width <= 0 {
		d.width = 120
	}
	if d.height <= 0 {
		d.height = 40
	}

	d.headerHeight = 1
	d.footerHeight = 1
	if m.view.showingSearch || m.view.searchQuery != "" {
		d.searchHeight = 1
	}
	d.bodyHeight = maxInt(8, d.height-d.headerHeight-d.footerHeight-d.searchHeight)

	switch m.view.zoomedPane {
	case paneFiles:
		d.filesWidth = d.width
	case paneDiff:
		d.diffWidth = d.width
	default:
		ratio := 0.32
		if m.view.focusedPane == paneFiles {
			ratio = 0.40
		}
		d.filesWidth = int(float64(d.width) * ratio)
		if d.filesWidth < minFilesPaneWidth {
			d.filesWidth = minInt(minFilesPaneWidth, d.width/2)
		}
		d.diffWidth = d.width - d.filesWidth
		if d.diffWidth < minDiffPaneWidth && d.width > minDiffPaneWidth {
			d.diffWidth = minDiffPaneWidth
			d.filesWidth = d.width - d.diffWidth
		}
	}

	// Border eats two columns and rows, horizontal padding two more.
	d.filesInnerWidth = maxInt(10, d.filesWidth-4)
	d.filesInnerHeight = maxInt(3, d.bodyHeight-2)
	d.diffInnerWidth = maxInt(10, d.diffWidth-4)
	d.diffInnerHeight = maxInt(3, d.bodyHeight-2)

	return d
}

// applyLayout pushes the computed dimensions into the components and
// reclamps the diff window.
func (m *Model) applyLayout() {
	d := m.computeLayout()

	// One row of each pane's inner height goes to the title line.
	m.ui.fileTable.SetHeight(maxInt(3, d.filesInnerHeight-1))
	m.updateTableColumns(d.filesInnerWidth)

	m.view.diffPageRows = maxInt(1, d.diffInnerHeight-1)
	m.clampStartLine()
	m.ensureCursorVisible()

	m.ui.searchInput.Width = maxInt(20, d.width-18)
}

// updateTableColumns reflows the file table columns to the pane width.
// The table writes two spaces of padding per cell, so the column widths
// undershoot the pane by that much to avoid wrapping.
func (m *Model) updateTableColumns(width int) {
	statusW := 2
	changeW := 11
	separatorSpace := 6
	fileW := width - statusW - changeW - separatorSpace
	if fileW < 12 {
		fileW = 12
	}
	m.ui.fileTable.SetColumns([]table.Column{
		{Title: " ", Width: statusW},
		{Title: "File", Width: fileW},
		{Title: "+/-", Width: changeW},
	})
}
