// Package models defines the data objects shared across go-istage packages.
package models

// StatusFile represents one entry from `git status --porcelain`.
type StatusFile struct {
	Path     string
	OrigPath string // rename/copy source, empty otherwise
	Code     string // two-letter XY code, "??" for untracked
}

// Untracked reports whether the entry is an untracked path.
func (s StatusFile) Untracked() bool {
	return s.Code == "??"
}

// Deleted reports whether the working tree no longer has the file.
func (s StatusFile) Deleted() bool {
	return len(s.Code) == 2 && (s.Code[0] == 'D' || s.Code[1] == 'D')
}

// HasWorktreeChanges reports whether the entry contributes to the
// working diff (worktree column set, or untracked).
func (s StatusFile) HasWorktreeChanges() bool {
	if s.Untracked() {
		return true
	}
	return len(s.Code) == 2 && s.Code[1] != ' ' && s.Code[1] != '.'
}

// HasIndexChanges reports whether the entry contributes to the staged
// diff (index column set).
func (s StatusFile) HasIndexChanges() bool {
	if s.Untracked() {
		return false
	}
	return len(s.Code) == 2 && s.Code[0] != ' ' && s.Code[0] != '.'
}

// Letter returns the single status letter shown in the file table for
// the given pane column: the index letter for the staged pane, the
// worktree letter otherwise. Untracked entries always show '?'.
func (s StatusFile) Letter(staged bool) byte {
	if s.Untracked() {
		return '?'
	}
	if len(s.Code) != 2 {
		return ' '
	}
	if staged {
		return s.Code[0]
	}
	return s.Code[1]
}

// Display returns the path as shown in the file table, with renames
// rendered as "old -> new".
func (s StatusFile) Display() string {
	if s.OrigPath != "" && s.OrigPath != s.Path {
		return s.OrigPath + " -> " + s.Path
	}
	return s.Path
}
