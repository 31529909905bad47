package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/cszczepaniak/go-istage/internal/app/screen"
	"github.com/cszczepaniak/go-istage/internal/models"
	"github.com/cszczepaniak/go-istage/internal/selection"
)

func TestToggleLineAppliesPatchImmediately(t *testing.T) {
	m, repo := newLoadedModel(t)

	m.data.cursor = 2 // the deleted "a" in alpha
	cmd := m.toggleCurrentRow()

	if cmd != nil {
		t.Error("expected no follow-up command after a clean apply")
	}
	applied := repo.appliedPatches()
	if len(applied) != 1 {
		t.Fatalf("expected one applied patch, got %d", len(applied))
	}
	// The deletion and its replacement line travel together; the
	// unselected extra addition stays out.
	if !strings.Contains(applied[0], "-a\n") || !strings.Contains(applied[0], "+b\n") {
		t.Errorf("expected the modification pair in the patch:\n%s", applied[0])
	}
	if strings.Contains(applied[0], "+c") {
		t.Errorf("expected the unselected addition to be excluded:\n%s", applied[0])
	}
	if got := m.sel.CurrentSelection(m.activeFiles(), 0); len(got) != 0 {
		t.Errorf("expected selection cleared after the refresh, got %d entries", len(got))
	}
	if m.view.statusLine != "" {
		t.Errorf("expected no status message, got %q", m.view.statusLine)
	}
}

func TestToggleContextLineIsIgnored(t *testing.T) {
	m, repo := newLoadedModel(t)

	m.data.cursor = 5 // the context "d" in alpha
	cmd := m.toggleCurrentRow()

	if cmd != nil {
		t.Error("expected context toggle to be silent")
	}
	if len(repo.appliedPatches()) != 0 {
		t.Error("expected nothing applied")
	}
	if m.view.statusLine != "" {
		t.Errorf("expected no status message, got %q", m.view.statusLine)
	}
}

func TestRejectedApplyRollsBackSelection(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.applyErr = errors.New("patch does not apply")

	m.data.cursor = 2
	cmd := m.toggleCurrentRow()

	if cmd == nil {
		t.Fatal("expected an error status command")
	}
	if !m.view.statusIsErr || !strings.Contains(m.view.statusLine, "apply failed") {
		t.Errorf("expected apply failure in the footer, got %q", m.view.statusLine)
	}
	if got := m.sel.CurrentSelection(m.activeFiles(), 0); len(got) != 0 {
		t.Errorf("expected selection rolled back, got %d entries", len(got))
	}
	// The model is left alone; no refresh happened.
	if len(m.data.rows) != 13 {
		t.Errorf("expected the diff model untouched, got %d rows", len(m.data.rows))
	}
}

func TestToggleThatDeselectsEverythingRestores(t *testing.T) {
	m, repo := newLoadedModel(t)

	// Pre-select the modification pair, then toggle it off again. With
	// nothing left to apply the selection snaps back.
	pos := selection.Position{File: 0, Hunk: 0, Line: 0}
	if err := m.sel.ToggleLine(m.activeFiles(), pos); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	m.data.cursor = 2
	cmd := m.toggleCurrentRow()

	if cmd != nil {
		t.Error("expected no command when nothing is left to apply")
	}
	if len(repo.appliedPatches()) != 0 {
		t.Error("expected nothing applied")
	}
	if got := m.sel.CurrentSelection(m.activeFiles(), 0); len(got) != 2 {
		t.Errorf("expected the prior selection restored, got %d entries", len(got))
	}
}

func TestToggleHunkStagesWholeHunk(t *testing.T) {
	m, repo := newLoadedModel(t)

	m.data.cursor = 1 // alpha's hunk header
	cmd := m.toggleCurrentRow()

	if cmd != nil {
		t.Error("expected no follow-up command")
	}
	applied := repo.appliedPatches()
	if len(applied) != 1 {
		t.Fatalf("expected one applied patch, got %d", len(applied))
	}
	for _, want := range []string{"-a\n", "+b\n", "+c\n"} {
		if !strings.Contains(applied[0], want) {
			t.Errorf("expected %q in the hunk patch:\n%s", want, applied[0])
		}
	}
}

func TestToggleFileFromHeaderSpansHunks(t *testing.T) {
	m, repo := newLoadedModel(t)

	m.data.cursor = 6 // beta's file header
	_ = m.toggleCurrentRow()

	applied := repo.appliedPatches()
	if len(applied) != 1 {
		t.Fatalf("expected one applied patch, got %d", len(applied))
	}
	if !strings.Contains(applied[0], "+y\n") || !strings.Contains(applied[0], "-w\n") {
		t.Errorf("expected both hunks of beta in the patch:\n%s", applied[0])
	}
}

func TestStagedDocumentTogglesUnstage(t *testing.T) {
	m, repo := newLoadedModel(t)
	m.switchDocument(docStaged)

	m.data.cursor = 3 // the added "n" in beta's staged hunk
	cmd := m.toggleCurrentRow()

	if cmd != nil {
		t.Error("expected no follow-up command")
	}
	if len(repo.appliedPatches()) != 0 {
		t.Error("expected no forward apply from the staged document")
	}
	reversed := repo.reverseAppliedPatches()
	if len(reversed) != 1 {
		t.Fatalf("expected one reverse-applied patch, got %d", len(reversed))
	}
	if !strings.Contains(reversed[0], "n") {
		t.Errorf("expected the unstaged line in the patch:\n%s", reversed[0])
	}
}

func TestToggleBinaryFileStagesWholePath(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.workingRaw = binaryDiffRaw
	snap, err := m.fetchSnapshot()
	if err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	m.installSnapshot(snap)

	m.data.cursor = 1 // the binary note row
	_ = m.toggleCurrentRow()

	if len(repo.stagedPaths) != 1 || repo.stagedPaths[0] != "img.png" {
		t.Errorf("expected img.png staged as a whole, got %v", repo.stagedPaths)
	}
	if len(repo.appliedPatches()) != 0 {
		t.Error("expected no line patch for a binary file")
	}
}

func TestToggleBinaryFileUnstagesOnStagedDoc(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.stagedRaw = binaryDiffRaw
	snap, err := m.fetchSnapshot()
	if err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	m.installSnapshot(snap)
	m.switchDocument(docStaged)

	m.data.cursor = 0
	_ = m.toggleCurrentRow()

	if len(repo.unstagedPaths) != 1 || repo.unstagedPaths[0] != "img.png" {
		t.Errorf("expected img.png unstaged as a whole, got %v", repo.unstagedPaths)
	}
}

func TestRefreshFailureAfterApplyDiscardsModel(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.fetchErr = errors.New("index.lock held")

	m.data.cursor = 2
	cmd := m.toggleCurrentRow()

	if cmd == nil {
		t.Fatal("expected an error status command")
	}
	if m.data.loadErr == nil {
		t.Error("expected the failed reload to be recorded")
	}
	if len(m.data.visible) != 0 {
		t.Errorf("expected the stale model dropped, got %d rows", len(m.data.visible))
	}
}

func TestCurrentFileIndexFollowsFocus(t *testing.T) {
	m, _ := newLoadedModel(t)

	m.ui.fileTable.SetCursor(1)
	if got := m.currentFileIndex(); got != 1 {
		t.Errorf("expected table cursor to win in the files pane, got %d", got)
	}

	m.setFocusedPane(paneDiff)
	m.data.cursor = 2
	if got := m.currentFileIndex(); got != 0 {
		t.Errorf("expected diff cursor to win in the diff pane, got %d", got)
	}
}

func TestPromptDiscardRequiresWorkingDocument(t *testing.T) {
	m, _ := newLoadedModel(t)
	m.switchDocument(docStaged)

	cmd := m.promptDiscard()

	if cmd == nil {
		t.Fatal("expected an error status command")
	}
	if !strings.Contains(m.view.statusLine, "switch to the working diff") {
		t.Errorf("expected a pointer to the working diff, got %q", m.view.statusLine)
	}
	if m.screens.IsActive() {
		t.Error("expected no confirm screen on the staged document")
	}
}

func TestDiscardFlowThroughConfirmScreen(t *testing.T) {
	m, repo := newLoadedModel(t)

	if cmd := m.promptDiscard(); cmd != nil {
		t.Fatal("expected the prompt to only push a screen")
	}
	if m.screens.Type() != screen.TypeConfirm {
		t.Fatalf("expected a confirm screen, got %v", m.screens.Type())
	}

	// Confirming runs the discard and closes the screen.
	_, cmd := m.Update(keyMsg("y"))
	if cmd == nil {
		t.Fatal("expected the discard command")
	}
	if m.screens.IsActive() {
		t.Error("expected the confirm screen closed")
	}

	msg, ok := cmd().(discardDoneMsg)
	if !ok {
		t.Fatalf("expected discardDoneMsg, got %T", msg)
	}
	if msg.err != nil {
		t.Fatalf("unexpected discard error: %v", msg.err)
	}
	if len(repo.discardedPaths) != 1 || repo.discardedPaths[0] != "alpha.txt" {
		t.Errorf("expected alpha.txt discarded, got %v", repo.discardedPaths)
	}

	_, _ = m.Update(msg)
	if !strings.Contains(m.view.statusLine, "discarded alpha.txt") {
		t.Errorf("expected discard confirmation in the footer, got %q", m.view.statusLine)
	}
}

func TestDiscardCancelDoesNothing(t *testing.T) {
	m, repo := newLoadedModel(t)

	_ = m.promptDiscard()
	_, cmd := m.Update(keyMsg("n"))

	if cmd != nil {
		t.Error("expected no command on cancel")
	}
	if m.screens.IsActive() {
		t.Error("expected the confirm screen closed")
	}
	if len(repo.discardedPaths) != 0 {
		t.Errorf("expected nothing discarded, got %v", repo.discardedPaths)
	}
}

func TestDiscardFailureShowsError(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.discardErr = errors.New("permission denied")

	msg := m.discardCmd("alpha.txt", false)().(discardDoneMsg)
	if msg.err == nil {
		t.Fatal("expected the discard error to surface")
	}

	_, _ = m.Update(msg)
	if !m.view.statusIsErr || !strings.Contains(m.view.statusLine, "discard failed") {
		t.Errorf("expected discard failure in the footer, got %q", m.view.statusLine)
	}
}

func TestPromptCommitRequiresStagedEntries(t *testing.T) {
	m, _ := newLoadedModel(t)
	m.data.status = []models.StatusFile{{Path: "alpha.txt", Code: " M"}}

	cmd := m.promptCommit()

	if cmd == nil {
		t.Fatal("expected an error status command")
	}
	if !strings.Contains(m.view.statusLine, "nothing staged") {
		t.Errorf("expected the empty-index message, got %q", m.view.statusLine)
	}
	if m.screens.IsActive() {
		t.Error("expected no commit screen without staged entries")
	}
}

func TestCommitFlowThroughScreen(t *testing.T) {
	m, repo := newLoadedModel(t)

	press(m, "c")
	if m.screens.Type() != screen.TypeCommit {
		t.Fatalf("expected the commit screen, got %v", m.screens.Type())
	}

	press(m, "f", "i", "x")
	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected the commit command")
	}
	if m.screens.IsActive() {
		t.Error("expected the commit screen closed")
	}

	msg, ok := cmd().(commitDoneMsg)
	if !ok {
		t.Fatalf("expected commitDoneMsg, got %T", msg)
	}
	if msg.err != nil {
		t.Fatalf("unexpected commit error: %v", msg.err)
	}
	if len(repo.commits) != 1 || repo.commits[0] != "fix" {
		t.Errorf("expected one commit with message fix, got %v", repo.commits)
	}

	_, _ = m.Update(msg)
	if !strings.Contains(m.view.statusLine, "committed on main") {
		t.Errorf("expected commit confirmation in the footer, got %q", m.view.statusLine)
	}
}

func TestCommitFailureKeepsModel(t *testing.T) {
	m, repo := newLoadedModel(t)
	repo.commitErr = errors.New("hook rejected")

	msg := m.commitCmd("fix")().(commitDoneMsg)
	if msg.err == nil {
		t.Fatal("expected the commit error to surface")
	}

	_, _ = m.Update(msg)
	if !m.view.statusIsErr || !strings.Contains(m.view.statusLine, "commit failed") {
		t.Errorf("expected commit failure in the footer, got %q", m.view.statusLine)
	}
	if m.data.loadErr != nil || len(m.data.rows) != 13 {
		t.Error("expected the diff model untouched after a failed commit")
	}
}
