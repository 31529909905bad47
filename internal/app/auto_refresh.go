package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/app/services"
	"github.com/cszczepaniak/go-istage/internal/log"
)

func (m *Model) watchDebounce() time.Duration {
	if m.config.UpdateDelayMS > 0 {
		return time.Duration(m.config.UpdateDelayMS) * time.Millisecond
	}
	return services.DefaultDebounce
}

// startRepoWatcher starts the filesystem watcher after the first
// snapshot; it needs the git dir, which that load resolves. Returns the
// command that waits for the first event.
func (m *Model) startRepoWatcher() tea.Cmd {
	if m.services.watch != nil {
		return nil
	}

	gitDir, err := m.repo.GitDir(m.ctx)
	if err != nil {
		log.Printf("watcher: resolve git dir: %v", err)
		return nil
	}

	w := services.NewRepoWatchService(m.watchDebounce(), log.Printf)
	started, err := w.Start(m.workTree, gitDir)
	if err != nil || !started {
		if err != nil {
			log.Printf("watcher: start: %v", err)
		}
		return nil
	}

	m.services.watch = w
	m.services.watch.MarkRefreshed(time.Now())
	return m.waitForRepoWatchEvent()
}

func (m *Model) stopRepoWatcher() {
	if m.services.watch != nil {
		m.services.watch.Stop()
		m.services.watch = nil
	}
}

// waitForRepoWatchEvent blocks on the watcher's debounced event channel
// and turns the next event into a message.
func (m *Model) waitForRepoWatchEvent() tea.Cmd {
	if m.services.watch == nil {
		return nil
	}
	events := m.services.watch.NextEvent()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		_, ok := <-events
		if !ok {
			return nil
		}
		return repoChangedMsg{}
	}
}

// handleRepoChanged reacts to a debounced watcher event. With auto
// refresh on, the snapshot reloads by itself; otherwise the footer
// points at the r key. Either way the watcher is rearmed.
func (m *Model) handleRepoChanged() (tea.Model, tea.Cmd) {
	if m.services.watch == nil {
		return m, nil
	}
	m.services.watch.ResetWaiting()
	rearm := m.waitForRepoWatchEvent()

	if !m.services.watch.ShouldRefresh(time.Now()) {
		return m, rearm
	}
	if m.config.AutoRefresh {
		return m, tea.Batch(m.loadSnapshot(), rearm)
	}
	return m, tea.Batch(m.setStatusNotice("working tree changed, press r to reload"), rearm)
}
