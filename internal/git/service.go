// Package git wraps the git binary for go-istage. All repository access
// goes through exec; there is no libgit2 binding to keep in sync with
// the user's installed git.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/cszczepaniak/go-istage/internal/log"
	"github.com/cszczepaniak/go-istage/internal/models"
)

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// Sentinel errors for the failure modes the UI distinguishes. Each is
// fatal for the one operation that hit it; callers re-fetch the diff
// rather than retry, since hunk positions shift after every apply.
var (
	ErrNotRepository = errors.New("not a git repository")
	ErrIndexLocked   = errors.New("index is locked by another process")
	ErrApplyRejected = errors.New("patch does not apply")
	ErrCommitFailed  = errors.New("commit failed")
)

// State summarizes the repository for the header line and the commit
// screen.
type State int

const (
	StateClean State = iota
	StateDirty
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// CommandError carries the detail of a failed git invocation.
type CommandError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		return fmt.Sprintf("git %s: exit %d", strings.Join(e.Args, " "), e.Code)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), detail)
}

// Service runs git commands against one repository.
type Service struct {
	workDir      string
	contextLines int
}

// NewService constructs a Service rooted at workDir. A negative context
// line count leaves git's default of 3.
func NewService(workDir string) *Service {
	return &Service{workDir: workDir, contextLines: -1}
}

// SetContextLines sets the -U<n> value used when fetching diffs.
func (s *Service) SetContextLines(n int) {
	s.contextLines = n
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

// execGit runs git with the given arguments, feeding stdin when
// non-empty. Exit codes listed in okCodes are treated as success; git
// diff --no-index reports differences with exit 1, so callers of that
// shape pass {0, 1}.
func (s *Service) execGit(ctx context.Context, stdin string, okCodes []int, args ...string) (string, error) {
	s.debugf("run: git %s (cwd=%s)", strings.Join(args, " "), s.workDir)

	// #nosec G204 -- arguments are assembled by internal logic and never shell interpolated
	cmd := exec.CommandContext(ctx, "git", args...)
	if s.workDir != "" {
		cmd.Dir = s.workDir
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			code := exitError.ExitCode()
			if slices.Contains(okCodes, code) {
				s.debugf("ok: git %s (exit %d)", strings.Join(args, " "), code)
				return stdout.String(), nil
			}
			cmdErr := &CommandError{Args: args, Code: code, Stderr: stderr.String()}
			s.debugf("error: %v", cmdErr)
			return "", cmdErr
		}
		s.debugf("error: git %s: %v", strings.Join(args, " "), err)
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	s.debugf("ok: git %s", strings.Join(args, " "))
	return stdout.String(), nil
}

func (s *Service) runGit(ctx context.Context, args ...string) (string, error) {
	return s.execGit(ctx, "", []int{0}, args...)
}

// RepoRoot resolves the top-level directory of the repository, or
// ErrNotRepository when workDir is outside one.
func (s *Service) RepoRoot(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, s.workDir)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name, or the short
// commit hash when HEAD is detached.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(out)
	if name != "HEAD" {
		return name, nil
	}
	sha, err := s.runGit(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sha), nil
}

func (s *Service) diffArgs(base ...string) []string {
	args := append([]string{"diff", "--no-color", "--no-ext-diff"}, base...)
	if s.contextLines >= 0 {
		args = append(args, fmt.Sprintf("--unified=%d", s.contextLines))
	}
	return args
}

// WorkingDiff returns the worktree-vs-index diff, with a synthesized
// new-file diff appended for each untracked path so untracked content
// is line-stageable like everything else.
func (s *Service) WorkingDiff(ctx context.Context) (string, error) {
	out, err := s.execGit(ctx, "", []int{0}, s.diffArgs()...)
	if err != nil {
		return "", err
	}

	untracked, err := s.UntrackedFiles(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(out)
	for _, path := range untracked {
		// Exit 1 just means the file differs from /dev/null, which is
		// the whole point.
		part, err := s.execGit(ctx, "", []int{0, 1}, "diff", "--no-color", "--no-ext-diff", "--no-index", os.DevNull, path)
		if err != nil {
			return "", err
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

// StagedDiff returns the index-vs-HEAD diff.
func (s *Service) StagedDiff(ctx context.Context) (string, error) {
	return s.execGit(ctx, "", []int{0}, s.diffArgs("--cached")...)
}

// ApplyToIndex applies a synthesized patch to the index.
func (s *Service) ApplyToIndex(ctx context.Context, patch string) error {
	return s.applyToIndex(ctx, patch, false)
}

// ApplyToIndexReverse applies a synthesized patch to the index in
// reverse, which unstages the lines it describes.
func (s *Service) ApplyToIndexReverse(ctx context.Context, patch string) error {
	return s.applyToIndex(ctx, patch, true)
}

func (s *Service) applyToIndex(ctx context.Context, patch string, reverse bool) error {
	args := []string{"apply", "--cached", "--unidiff-zero", "--whitespace=nowarn"}
	if reverse {
		args = append(args, "--reverse")
	}
	args = append(args, "-")

	_, err := s.execGit(ctx, patch, []int{0}, args...)
	if err != nil {
		return classifyIndexError(err)
	}
	return nil
}

// classifyIndexError maps git stderr onto the sentinel the UI reacts
// to. A held index.lock is reported separately, since retrying the same
// patch can succeed once the other process finishes.
func classifyIndexError(err error) error {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}
	if strings.Contains(cmdErr.Stderr, "index.lock") {
		return fmt.Errorf("%w: %s", ErrIndexLocked, strings.TrimSpace(cmdErr.Stderr))
	}
	return fmt.Errorf("%w: %s", ErrApplyRejected, strings.TrimSpace(cmdErr.Stderr))
}

// Commit records the index as a new commit with the given message.
func (s *Service) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: empty message", ErrCommitFailed)
	}
	_, err := s.runGit(ctx, "commit", "-m", message)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			if strings.Contains(cmdErr.Stderr, "index.lock") {
				return fmt.Errorf("%w: %s", ErrIndexLocked, strings.TrimSpace(cmdErr.Stderr))
			}
			detail := strings.TrimSpace(cmdErr.Stderr)
			if detail == "" {
				detail = strings.TrimSpace(cmdErr.Error())
			}
			return fmt.Errorf("%w: %s", ErrCommitFailed, detail)
		}
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

// GitDir resolves the repository's .git directory as an absolute path.
func (s *Service) GitDir(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, s.workDir)
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.workDir, dir)
	}
	return dir, nil
}

// RepositoryState reports Locked when another process holds the index
// lock, otherwise Clean or Dirty from porcelain status.
func (s *Service) RepositoryState(ctx context.Context) (State, error) {
	dir, err := s.GitDir(ctx)
	if err != nil {
		return StateClean, err
	}
	if _, err := os.Stat(filepath.Join(dir, "index.lock")); err == nil {
		return StateLocked, nil
	}

	files, err := s.StatusFiles(ctx)
	if err != nil {
		return StateClean, err
	}
	if len(files) > 0 {
		return StateDirty, nil
	}
	return StateClean, nil
}

// StatusFiles returns the porcelain status entries. Untracked
// directories are expanded to individual files so each can be diffed
// against /dev/null.
func (s *Service) StatusFiles(ctx context.Context) ([]models.StatusFile, error) {
	out, err := s.runGit(ctx, "status", "--porcelain", "-z", "-uall")
	if err != nil {
		return nil, err
	}
	return parseStatusEntries(out), nil
}

// parseStatusEntries parses NUL-terminated porcelain v1 output. Each
// entry is "XY path"; rename and copy entries are followed by the
// source path as an extra NUL token.
func parseStatusEntries(raw string) []models.StatusFile {
	tokens := strings.Split(raw, "\x00")
	var files []models.StatusFile
	for i := 0; i < len(tokens); i++ {
		entry := tokens[i]
		if len(entry) < 4 {
			continue
		}
		code := entry[:2]
		path := entry[3:]

		sf := models.StatusFile{Path: path, Code: code}
		if code[0] == 'R' || code[0] == 'C' {
			if i+1 < len(tokens) && tokens[i+1] != "" {
				i++
				sf.OrigPath = tokens[i]
			}
		}
		files = append(files, sf)
	}
	return files
}

// UntrackedFiles lists paths git does not track yet.
func (s *Service) UntrackedFiles(ctx context.Context) ([]string, error) {
	files, err := s.StatusFiles(ctx)
	if err != nil {
		return nil, err
	}
	var untracked []string
	for _, f := range files {
		if f.Untracked() {
			untracked = append(untracked, f.Path)
		}
	}
	return untracked, nil
}

// StagePath stages a whole file. Used for binary files, where line
// granularity is not offered.
func (s *Service) StagePath(ctx context.Context, path string) error {
	_, err := s.runGit(ctx, "add", "--", path)
	if err != nil {
		return classifyIndexError(err)
	}
	return nil
}

// UnstagePath removes a whole file's staged changes from the index.
func (s *Service) UnstagePath(ctx context.Context, path string) error {
	_, err := s.runGit(ctx, "restore", "--staged", "--", path)
	if err != nil {
		return classifyIndexError(err)
	}
	return nil
}

// DiscardPath throws away a file's worktree changes. Untracked files
// are removed outright. Callers confirm with the user first; there is
// no undo.
func (s *Service) DiscardPath(ctx context.Context, path string, untracked bool) error {
	if untracked {
		target := path
		if !filepath.IsAbs(target) {
			target = filepath.Join(s.workDir, target)
		}
		return os.Remove(target)
	}
	_, err := s.runGit(ctx, "checkout", "--", path)
	return err
}
