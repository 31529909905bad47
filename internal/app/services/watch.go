// Package services holds background collaborators of the app model. The
// watch service is the only one: it observes the repository for changes
// made outside the running session.
package services

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the debounce window for watcher events when the
// configuration does not override it.
const DefaultDebounce = 600 * time.Millisecond

// RepoWatchService watches the working tree and the git directory so the
// UI can react when another process changes either. It never refreshes
// anything itself; it only signals the update loop.
type RepoWatchService struct {
	Started     bool
	Waiting     bool
	WorkTree    string
	GitDir      string
	Events      chan struct{}
	Done        chan struct{}
	Paths       map[string]struct{}
	Mu          sync.Mutex
	Watcher     *fsnotify.Watcher
	LastRefresh time.Time
	debounce    time.Duration
	logf        func(string, ...any)
}

// NewRepoWatchService creates a watch service with the given debounce
// window. A zero or negative debounce falls back to DefaultDebounce.
func NewRepoWatchService(debounce time.Duration, logf func(string, ...any)) *RepoWatchService {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &RepoWatchService{
		debounce: debounce,
		logf:     logf,
	}
}

// Start begins watching workTree recursively (skipping the git directory
// itself) plus the top level of gitDir, where the index and HEAD live.
func (w *RepoWatchService) Start(workTree, gitDir string) (bool, error) {
	if w.Started || workTree == "" {
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.Started = true
	w.Watcher = watcher
	w.WorkTree = workTree
	w.GitDir = gitDir
	w.Events = make(chan struct{}, 1)
	w.Done = make(chan struct{})
	w.Paths = make(map[string]struct{})
	w.addWatchTree(workTree)
	w.addWatchDir(gitDir)

	go w.run()
	return true, nil
}

// Stop stops the watcher and closes channels.
func (w *RepoWatchService) Stop() {
	if !w.Started {
		return
	}
	close(w.Done)
	w.Started = false
	if w.Watcher != nil {
		_ = w.Watcher.Close()
	}
}

// NextEvent returns the event channel if waiting is not already active.
// The update loop keeps exactly one command blocked on it at a time.
func (w *RepoWatchService) NextEvent() <-chan struct{} {
	if w.Events == nil || w.Waiting {
		return nil
	}
	w.Waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed.
func (w *RepoWatchService) ResetWaiting() {
	w.Waiting = false
}

// ShouldRefresh checks debounce timing for watcher events. The session's
// own index writes fire the watcher too, so the app marks every refresh
// it performs and events inside the window are dropped.
func (w *RepoWatchService) ShouldRefresh(now time.Time) bool {
	if !w.LastRefresh.IsZero() && now.Sub(w.LastRefresh) < w.debounce {
		return false
	}
	w.LastRefresh = now
	return true
}

// MarkRefreshed records a refresh performed by the app itself.
func (w *RepoWatchService) MarkRefreshed(now time.Time) {
	w.LastRefresh = now
}

// MaybeWatchNewDir registers newly created directories under the working
// tree so edits inside them keep signaling.
func (w *RepoWatchService) MaybeWatchNewDir(path string) {
	if !w.IsUnderWorkTree(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchDir(path)
}

// Signal notifies listeners of watcher activity.
func (w *RepoWatchService) Signal() {
	select {
	case <-w.Done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// IsUnderWorkTree reports whether the path is inside the working tree
// but not inside the git directory.
func (w *RepoWatchService) IsUnderWorkTree(path string) bool {
	if path == "" || w.WorkTree == "" {
		return false
	}
	if w.GitDir != "" && (path == w.GitDir || strings.HasPrefix(path, w.GitDir+string(filepath.Separator))) {
		return false
	}
	return path == w.WorkTree || strings.HasPrefix(path, w.WorkTree+string(filepath.Separator))
}

func (w *RepoWatchService) run() {
	for {
		select {
		case <-w.Done:
			return
		case event, ok := <-w.Watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// Lock files churn on every git invocation, including ours.
			if strings.HasSuffix(event.Name, ".lock") {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.MaybeWatchNewDir(event.Name)
			}
			w.Signal()
		case err, ok := <-w.Watcher.Errors:
			if !ok {
				return
			}
			w.debugf("repo watcher error: %v", err)
		}
	}
}

func (w *RepoWatchService) addWatchDir(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.Mu.Lock()
	defer w.Mu.Unlock()

	if _, ok := w.Paths[path]; ok {
		return
	}
	if err := w.Watcher.Add(path); err != nil {
		w.debugf("repo watcher add failed for %s: %v", path, err)
		return
	}
	w.Paths[path] = struct{}{}
}

func (w *RepoWatchService) addWatchTree(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != root {
			return fs.SkipDir
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *RepoWatchService) debugf(format string, args ...any) {
	if w.logf == nil {
		return
	}
	w.logf(format, args...)
}
