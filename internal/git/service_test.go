package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/models"
	"github.com/cszczepaniak/go-istage/internal/patch"
	"github.com/cszczepaniak/go-istage/internal/selection"
)

// setupRepo creates a git repository with one committed file.
func setupRepo(t *testing.T, name, content string) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGitCmd(t, dir, "init")
	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")
	runGitCmd(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, name, content)
	runGitCmd(t, dir, "add", ".")
	runGitCmd(t, dir, "commit", "-m", "initial")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, output)
	return strings.TrimSpace(string(output))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	// #nosec G306 -- test fixture
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func changedPositions(f diff.File, hunk int) []selection.Position {
	var out []selection.Position
	for l, line := range f.Hunks[hunk].Lines {
		if line.Changed() {
			out = append(out, selection.Position{Hunk: hunk, Line: l})
		}
	}
	return out
}

func TestRepoRoot(t *testing.T) {
	ctx := context.Background()

	t.Run("inside a repository", func(t *testing.T) {
		dir := setupRepo(t, "f.txt", "hello\n")
		root, err := NewService(dir).RepoRoot(ctx)
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("outside a repository", func(t *testing.T) {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not available")
		}
		_, err := NewService(t.TempDir()).RepoRoot(ctx)
		assert.ErrorIs(t, err, ErrNotRepository)
	})
}

func TestCurrentBranch(t *testing.T) {
	dir := setupRepo(t, "f.txt", "hello\n")
	branch, err := NewService(dir).CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"main", "master"}, branch)
}

func TestWorkingDiff(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\nbeta\ngamma\n")
	svc := NewService(dir)

	t.Run("clean tree", func(t *testing.T) {
		out, err := svc.WorkingDiff(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("modified file", func(t *testing.T) {
		writeFile(t, dir, "f.txt", "alpha\nBETA\ngamma\n")
		out, err := svc.WorkingDiff(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, "diff --git a/f.txt b/f.txt")
		assert.Contains(t, out, "-beta")
		assert.Contains(t, out, "+BETA")
	})

	t.Run("untracked file is synthesized", func(t *testing.T) {
		writeFile(t, dir, "notes.txt", "one\ntwo\n")
		out, err := svc.WorkingDiff(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, "--- /dev/null")
		assert.Contains(t, out, "+++ b/notes.txt")
		assert.Contains(t, out, "+one")

		files, err := diff.Parse(out)
		require.NoError(t, err)
		require.Len(t, files, 2)
	})
}

func TestContextLines(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\nbeta\ngamma\n")
	svc := NewService(dir)
	svc.SetContextLines(0)

	writeFile(t, dir, "f.txt", "alpha\nBETA\ngamma\n")
	out, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "-beta")
	assert.NotContains(t, out, " alpha")
}

func TestStageSelectedLinesOfOneHunk(t *testing.T) {
	ctx := context.Background()
	original := "alpha\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nomega\nten\n"
	modified := "alpha changed\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nomega changed\nten\n"

	dir := setupRepo(t, "f.txt", original)
	svc := NewService(dir)
	writeFile(t, dir, "f.txt", modified)

	out, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	files, err := diff.Parse(out)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 2)

	p, err := patch.Build(files[0], changedPositions(files[0], 0))
	require.NoError(t, err)
	require.NoError(t, svc.ApplyToIndex(ctx, p))

	staged, err := svc.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, staged, "+alpha changed")
	assert.NotContains(t, staged, "omega changed")

	working, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, working, "+omega changed")
	assert.NotContains(t, working, "alpha changed")
}

func TestUnstageSelectedLines(t *testing.T) {
	ctx := context.Background()
	original := "alpha\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nomega\nten\n"
	modified := "alpha changed\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nomega changed\nten\n"

	dir := setupRepo(t, "f.txt", original)
	svc := NewService(dir)
	writeFile(t, dir, "f.txt", modified)
	runGitCmd(t, dir, "add", ".")

	out, err := svc.StagedDiff(ctx)
	require.NoError(t, err)
	files, err := diff.Parse(out)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 2)

	p, err := patch.Invert(files[0], changedPositions(files[0], 0))
	require.NoError(t, err)
	require.NoError(t, svc.ApplyToIndexReverse(ctx, p))

	staged, err := svc.StagedDiff(ctx)
	require.NoError(t, err)
	assert.NotContains(t, staged, "alpha changed")
	assert.Contains(t, staged, "+omega changed")

	working, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, working, "+alpha changed")
}

func TestStagePartOfUntrackedFile(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "hello\n")
	svc := NewService(dir)
	writeFile(t, dir, "notes.txt", "one\ntwo\nthree\n")

	out, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	files, err := diff.Parse(out)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, diff.FileAdded, files[0].Kind)

	p, err := patch.Build(files[0], []selection.Position{{Hunk: 0, Line: 0}})
	require.NoError(t, err)
	require.NoError(t, svc.ApplyToIndex(ctx, p))

	staged, err := svc.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, staged, "+one")
	assert.NotContains(t, staged, "+two")

	working, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, working, "+two")

	untracked, err := svc.UntrackedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, untracked)
}

func TestApplyRejected(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\nbeta\ngamma\n")
	svc := NewService(dir)

	stale := `diff --git a/f.txt b/f.txt
index 1111111..2222222 100644
--- a/f.txt
+++ b/f.txt
@@ -1,1 +1,1 @@
-no such line
+replacement
`
	err := svc.ApplyToIndex(ctx, stale)
	assert.ErrorIs(t, err, ErrApplyRejected)
}

func TestIndexLocked(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\n")
	svc := NewService(dir)

	lock := filepath.Join(dir, ".git", "index.lock")
	// #nosec G306 -- simulating another process holding the lock
	require.NoError(t, os.WriteFile(lock, nil, 0o644))
	defer func() { _ = os.Remove(lock) }()

	state, err := svc.RepositoryState(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateLocked, state)

	writeFile(t, dir, "f.txt", "changed\n")
	out, err := svc.WorkingDiff(ctx)
	require.NoError(t, err)
	files, err := diff.Parse(out)
	require.NoError(t, err)

	p, err := patch.Build(files[0], changedPositions(files[0], 0))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ApplyToIndex(ctx, p), ErrIndexLocked)
}

func TestRepositoryState(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\n")
	svc := NewService(dir)

	state, err := svc.RepositoryState(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateClean, state)

	writeFile(t, dir, "f.txt", "changed\n")
	state, err = svc.RepositoryState(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateDirty, state)
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\n")
	svc := NewService(dir)

	t.Run("commits staged changes", func(t *testing.T) {
		writeFile(t, dir, "f.txt", "changed\n")
		runGitCmd(t, dir, "add", ".")

		require.NoError(t, svc.Commit(ctx, "change alpha"))
		assert.Contains(t, runGitCmd(t, dir, "log", "-1", "--format=%s"), "change alpha")
	})

	t.Run("empty message", func(t *testing.T) {
		assert.ErrorIs(t, svc.Commit(ctx, "   "), ErrCommitFailed)
	})

	t.Run("nothing staged", func(t *testing.T) {
		assert.ErrorIs(t, svc.Commit(ctx, "no-op"), ErrCommitFailed)
	})
}

func TestStatusFiles(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "a.txt", "content\n")
	svc := NewService(dir)

	runGitCmd(t, dir, "mv", "a.txt", "b.txt")
	writeFile(t, dir, "new.txt", "fresh\n")

	files, err := svc.StatusFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)

	byPath := make(map[string]models.StatusFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	renamed, ok := byPath["b.txt"]
	require.True(t, ok)
	assert.Equal(t, "a.txt", renamed.OrigPath)
	assert.Equal(t, byte('R'), renamed.Code[0])
	assert.Equal(t, "a.txt -> b.txt", renamed.Display())

	fresh, ok := byPath["new.txt"]
	require.True(t, ok)
	assert.True(t, fresh.Untracked())
}

func TestStageAndUnstagePath(t *testing.T) {
	ctx := context.Background()
	dir := setupRepo(t, "f.txt", "alpha\n")
	svc := NewService(dir)

	writeFile(t, dir, "f.txt", "changed\n")
	require.NoError(t, svc.StagePath(ctx, "f.txt"))

	staged, err := svc.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, staged, "+changed")

	require.NoError(t, svc.UnstagePath(ctx, "f.txt"))
	staged, err = svc.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestDiscardPath(t *testing.T) {
	ctx := context.Background()

	t.Run("tracked file is restored", func(t *testing.T) {
		dir := setupRepo(t, "f.txt", "alpha\n")
		svc := NewService(dir)

		writeFile(t, dir, "f.txt", "mangled\n")
		require.NoError(t, svc.DiscardPath(ctx, "f.txt", false))

		content, err := os.ReadFile(filepath.Join(dir, "f.txt"))
		require.NoError(t, err)
		assert.Equal(t, "alpha\n", string(content))
	})

	t.Run("untracked file is removed", func(t *testing.T) {
		dir := setupRepo(t, "f.txt", "alpha\n")
		svc := NewService(dir)

		writeFile(t, dir, "scratch.txt", "tmp\n")
		require.NoError(t, svc.DiscardPath(ctx, "scratch.txt", true))
		assert.NoFileExists(t, filepath.Join(dir, "scratch.txt"))
	})
}

func TestParseStatusEntries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []models.StatusFile
	}{
		{
			name:  "modified",
			input: " M f.txt\x00",
			expected: []models.StatusFile{
				{Path: "f.txt", Code: " M"},
			},
		},
		{
			name:  "untracked",
			input: "?? new.txt\x00",
			expected: []models.StatusFile{
				{Path: "new.txt", Code: "??"},
			},
		},
		{
			name:  "rename consumes source token",
			input: "R  b.txt\x00a.txt\x00 M other.txt\x00",
			expected: []models.StatusFile{
				{Path: "b.txt", OrigPath: "a.txt", Code: "R "},
				{Path: "other.txt", Code: " M"},
			},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseStatusEntries(tt.input))
		})
	}
}

func TestClassifyIndexError(t *testing.T) {
	lockErr := classifyIndexError(&CommandError{
		Args:   []string{"apply"},
		Code:   128,
		Stderr: "fatal: Unable to create '/repo/.git/index.lock': File exists.",
	})
	assert.ErrorIs(t, lockErr, ErrIndexLocked)

	applyErr := classifyIndexError(&CommandError{
		Args:   []string{"apply"},
		Code:   1,
		Stderr: "error: patch failed: f.txt:1",
	})
	assert.ErrorIs(t, applyErr, ErrApplyRejected)

	plain := assert.AnError
	assert.Equal(t, plain, classifyIndexError(plain))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "clean", StateClean.String())
	assert.Equal(t, "dirty", StateDirty.String())
	assert.Equal(t, "locked", StateLocked.String())
	assert.Equal(t, "unknown", State(42).String())
}
