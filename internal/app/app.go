package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/app/screen"
	"github.com/cszczepaniak/go-istage/internal/app/services"
	"github.com/cszczepaniak/go-istage/internal/config"
	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/git"
	"github.com/cszczepaniak/go-istage/internal/models"
	"github.com/cszczepaniak/go-istage/internal/selection"
	"github.com/cszczepaniak/go-istage/internal/theme"
)

// repoService is the slice of the git service the UI consumes.
type repoService interface {
	CurrentBranch(ctx context.Context) (string, error)
	RepositoryState(ctx context.Context) (git.State, error)
	StatusFiles(ctx context.Context) ([]models.StatusFile, error)
	WorkingDiff(ctx context.Context) (string, error)
	StagedDiff(ctx context.Context) (string, error)
	ApplyToIndex(ctx context.Context, patch string) error
	ApplyToIndexReverse(ctx context.Context, patch string) error
	Commit(ctx context.Context, message string) error
	StagePath(ctx context.Context, path string) error
	UnstagePath(ctx context.Context, path string) error
	DiscardPath(ctx context.Context, path string, untracked bool) error
	GitDir(ctx context.Context) (string, error)
}

// document selects which side of the index the diff pane shows.
type document int

const (
	docWorking document = iota
	docStaged
)

// Pane indices, shared by focus and zoom state.
const (
	paneFiles = 0
	paneDiff  = 1
)

const (
	minFilesPaneWidth = 28
	minDiffPaneWidth  = 40
	statusClearDelay  = 4 * time.Second
)

type uiComponents struct {
	fileTable   table.Model
	searchInput textinput.Model
}

type viewState struct {
	windowWidth  int
	windowHeight int

	focusedPane int
	zoomedPane  int // -1 when not zoomed
	doc         document

	showingSearch bool
	searchQuery   string

	statusLine   string
	statusIsErr  bool
	statusSticky bool

	diffPageRows int
}

type repoData struct {
	loaded  bool
	loadErr error
	branch  string
	state   git.State
	status  []models.StatusFile
	working []diff.File
	staged  []diff.File

	// Derived view of the active document. rows is the full flattened
	// diff; visible indexes into rows after search narrowing; cursor
	// and startLine index into visible.
	rows       []diffRow
	visible    []int
	fileStarts []int
	hunkStarts []int
	cursor     int
	startLine  int
}

type appServices struct {
	watch *services.RepoWatchService
}

// Model is the root Bubble Tea model.
type Model struct {
	config   *config.AppConfig
	theme    *theme.Theme
	repo     repoService
	workTree string

	ui   uiComponents
	view viewState
	data repoData

	sel      *selection.State
	screens  *screen.Manager
	services appServices

	// statusSeq invalidates stale clearStatusMsg ticks.
	statusSeq int

	ctx    context.Context
	cancel context.CancelFunc

	quitting bool
}

// NewModel builds the root model for the repository at workTree.
func NewModel(cfg *config.AppConfig, repo repoService, workTree string) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	thm := theme.GetTheme(cfg.Theme)

	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "File", Width: 24},
		{Title: "+/-", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Foreground(thm.MutedFg).
		Bold(true)
	ts.Cell = ts.Cell.Foreground(thm.TextFg)
	ts.Selected = ts.Selected.
		Foreground(thm.AccentFg).
		Background(thm.Accent).
		Bold(true)
	t.SetStyles(ts)

	si := textinput.New()
	si.Placeholder = "Search diff..."
	si.CharLimit = 200
	si.Width = 40

	return &Model{
		config:   cfg,
		theme:    thm,
		repo:     repo,
		workTree: workTree,
		ui: uiComponents{
			fileTable:   t,
			searchInput: si,
		},
		view: viewState{
			zoomedPane:   -1,
			diffPageRows: 1,
		},
		sel:     selection.New(),
		screens: screen.NewManager(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.windowWidth = msg.Width
		m.view.windowHeight = msg.Height
		m.applyLayout()
		return m, nil

	case tea.KeyMsg:
		if m.screens.IsActive() {
			return m.handleScreenKey(msg)
		}
		return m.handleKeyMsg(msg)

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case repoChangedMsg:
		return m.handleRepoChanged()

	case commitDoneMsg:
		return m.handleCommitDone(msg)

	case discardDoneMsg:
		return m.handleDiscardDone(msg)

	case clearStatusMsg:
		if msg.seq == m.statusSeq && !m.view.statusSticky {
			m.view.statusLine = ""
			m.view.statusIsErr = false
		}
		return m, nil

	case errMsg:
		if msg.err != nil {
			return m, m.setStatusError(msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.stopRepoWatcher()
	m.cancel()
	return m, tea.Quit
}

// setStatus puts a message in the footer. Non-sticky messages clear
// themselves after statusClearDelay; sticky ones stay until the next
// snapshot install.
func (m *Model) setStatus(text string, isErr, sticky bool) tea.Cmd {
	m.statusSeq++
	m.view.statusLine = text
	m.view.statusIsErr = isErr
	m.view.statusSticky = sticky
	if sticky {
		return nil
	}
	seq := m.statusSeq
	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) setStatusError(text string) tea.Cmd {
	return m.setStatus(text, true, false)
}

func (m *Model) setStatusInfo(text string) tea.Cmd {
	return m.setStatus(text, false, false)
}

func (m *Model) setStatusNotice(text string) tea.Cmd {
	return m.setStatus(text, false, true)
}

// activeFiles returns the diff model behind the current document.
func (m *Model) activeFiles() []diff.File {
	if m.view.doc == docStaged {
		return m.data.staged
	}
	return m.data.working
}
