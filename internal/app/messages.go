package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/git"
	"github.com/cszczepaniak/go-istage/internal/models"
)

// repoSnapshot is one consistent read of everything the UI shows. A new
// snapshot replaces the old one wholesale; nothing is patched in place.
type repoSnapshot struct {
	branch  string
	state   git.State
	status  []models.StatusFile
	working []diff.File
	staged  []diff.File
}

// Message types for the Bubble Tea app.
type (
	errMsg      struct{ err error }
	snapshotMsg struct {
		snap repoSnapshot
		err  error
	}
	repoChangedMsg struct{}
	commitDoneMsg  struct {
		snap    repoSnapshot
		err     error // the commit itself failed
		snapErr error // the reload after the commit failed
	}
	discardDoneMsg struct {
		path    string
		snap    repoSnapshot
		err     error
		snapErr error
	}
	clearStatusMsg struct{ seq int }
)

// fetchSnapshot reads branch, repository state, status and both diffs in
// one pass.
func (m *Model) fetchSnapshot() (repoSnapshot, error) {
	var snap repoSnapshot
	var err error

	if snap.branch, err = m.repo.CurrentBranch(m.ctx); err != nil {
		return snap, err
	}
	if snap.state, err = m.repo.RepositoryState(m.ctx); err != nil {
		return snap, err
	}
	if snap.status, err = m.repo.StatusFiles(m.ctx); err != nil {
		return snap, err
	}

	workingRaw, err := m.repo.WorkingDiff(m.ctx)
	if err != nil {
		return snap, err
	}
	if snap.working, err = diff.Parse(workingRaw); err != nil {
		return snap, fmt.Errorf("parse working diff: %w", err)
	}

	stagedRaw, err := m.repo.StagedDiff(m.ctx)
	if err != nil {
		return snap, err
	}
	if snap.staged, err = diff.Parse(stagedRaw); err != nil {
		return snap, fmt.Errorf("parse staged diff: %w", err)
	}

	return snap, nil
}

// loadSnapshot fetches a snapshot off the update loop. Used for the
// initial load and for passive refreshes (the r key, watcher events);
// apply-triggered refreshes run synchronously instead so the cleared
// selection and the new model land together.
func (m *Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.fetchSnapshot()
		return snapshotMsg{snap: snap, err: err}
	}
}

// handleSnapshot installs a passively loaded snapshot. The selection is
// revalidated against the new model by content, which matters only when
// a rejected apply left lines flipped; at rest it is empty.
func (m *Model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.failSnapshot(msg.err)
	}

	newActive := msg.snap.working
	if m.view.doc == docStaged {
		newActive = msg.snap.staged
	}
	m.sel.Revalidate(m.activeFiles(), newActive)
	m.installSnapshot(msg.snap)

	return m, m.startRepoWatcher()
}

// failSnapshot discards the diff model after a failed load so the panes
// never show data the repository has moved past.
func (m *Model) failSnapshot(err error) tea.Cmd {
	m.data.loadErr = err
	m.data.working = nil
	m.data.staged = nil
	m.data.loaded = true
	m.sel.Clear()
	m.rebuildRows()
	m.syncFileTable()
	return m.setStatusError(fmt.Sprintf("load failed: %v, press r to retry", err))
}

// installSnapshot replaces the repository data and rebuilds everything
// derived from it. Any pending footer notice is considered answered.
func (m *Model) installSnapshot(snap repoSnapshot) {
	m.data.branch = snap.branch
	m.data.state = snap.state
	m.data.status = snap.status
	m.data.working = snap.working
	m.data.staged = snap.staged
	m.data.loaded = true
	m.data.loadErr = nil

	m.view.statusLine = ""
	m.view.statusSticky = false

	m.rebuildRows()
	m.syncFileTable()

	if m.services.watch != nil {
		m.services.watch.MarkRefreshed(time.Now())
	}
}

// handleCommitDone reports the outcome of a commit started from the
// commit screen.
func (m *Model) handleCommitDone(msg commitDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setStatusError(fmt.Sprintf("commit failed: %v", msg.err))
	}
	if msg.snapErr != nil {
		return m, m.failSnapshot(msg.snapErr)
	}

	m.sel.Clear()
	m.installSnapshot(msg.snap)
	if m.data.branch != "" {
		return m, m.setStatusInfo(fmt.Sprintf("committed on %s", m.data.branch))
	}
	return m, m.setStatusInfo("changes committed")
}

// handleDiscardDone reports the outcome of a confirmed discard.
func (m *Model) handleDiscardDone(msg discardDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setStatusError(fmt.Sprintf("discard failed: %v", msg.err))
	}
	if msg.snapErr != nil {
		return m, m.failSnapshot(msg.snapErr)
	}

	m.sel.Clear()
	m.installSnapshot(msg.snap)
	return m, m.setStatusInfo(fmt.Sprintf("discarded %s", msg.path))
}
