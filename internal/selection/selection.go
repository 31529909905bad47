// Package selection tracks staged/unstaged intent for the lines of one
// diff snapshot. It is pure in-memory state: callers pass the live model
// into every operation and the package never touches the repository.
package selection

import (
	"errors"
	"sort"

	"github.com/cszczepaniak/go-istage/internal/diff"
)

// ErrNotToggleable reports a toggle aimed at a context line (or a
// position that does not exist in the model). The UI ignores it
// silently; context lines are included or excluded automatically by the
// patch builder.
var ErrNotToggleable = errors.New("line is not toggleable")

// Position addresses one line of the diff model by index. Positions are
// plain values, never pointers into the model, so replacing the model
// on refresh cannot leave anything dangling.
type Position struct {
	File int
	Hunk int
	Line int
}

// State holds the staged flag per position. Entries may outlive the
// model generation they were made against; every read path filters them
// against the live model.
type State struct {
	staged map[Position]bool
}

// New returns an empty selection.
func New() *State {
	return &State{staged: make(map[Position]bool)}
}

// IsStaged reports the staged flag for a position.
func (s *State) IsStaged(pos Position) bool {
	return s.staged[pos]
}

// ToggleLine flips the staged flag of one addition or deletion line.
// Within a change block the i-th deletion and the i-th addition form a
// modification pair and flip together, so staging a rewritten line also
// stages the removal of the text it replaced. Context lines are not
// toggleable.
func (s *State) ToggleLine(files []diff.File, pos Position) error {
	line, ok := lineAt(files, pos)
	if !ok || !line.Changed() {
		return ErrNotToggleable
	}

	value := !s.staged[pos]
	s.set(pos, value)
	if partner, ok := pairOf(files, pos); ok {
		s.set(partner, value)
	}
	return nil
}

// ToggleHunk sets every addition/deletion line in the hunk to the
// opposite of the hunk's dominant state: if any changed line is
// unstaged, stage all; otherwise unstage all.
func (s *State) ToggleHunk(files []diff.File, file, hunk int) {
	if file < 0 || file >= len(files) || hunk < 0 || hunk >= len(files[file].Hunks) {
		return
	}
	value := s.anyUnstaged(files, file, hunk, hunk+1)
	s.setHunks(files, file, hunk, hunk+1, value)
}

// ToggleFile applies the hunk toggle semantics across every hunk of the
// file, with the dominant state computed file-wide.
func (s *State) ToggleFile(files []diff.File, file int) {
	if file < 0 || file >= len(files) {
		return
	}
	value := s.anyUnstaged(files, file, 0, len(files[file].Hunks))
	s.setHunks(files, file, 0, len(files[file].Hunks), value)
}

// CurrentSelection returns the staged positions for one file, ordered
// by hunk then line. Entries left over from a prior model generation
// (out of bounds, or no longer a changed line) are discarded, so the
// result is always a subset of the live model.
func (s *State) CurrentSelection(files []diff.File, file int) []Position {
	var out []Position
	for pos, staged := range s.staged {
		if !staged || pos.File != file {
			continue
		}
		line, ok := lineAt(files, pos)
		if !ok || !line.Changed() {
			continue
		}
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hunk != out[j].Hunk {
			return out[i].Hunk < out[j].Hunk
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Snapshot returns a copy of the selection for rollback after a
// rejected apply.
func (s *State) Snapshot() map[Position]bool {
	snap := make(map[Position]bool, len(s.staged))
	for pos, v := range s.staged {
		snap[pos] = v
	}
	return snap
}

// Restore replaces the selection with a snapshot taken earlier.
func (s *State) Restore(snap map[Position]bool) {
	s.staged = make(map[Position]bool, len(snap))
	for pos, v := range snap {
		s.staged[pos] = v
	}
}

// Clear drops every entry.
func (s *State) Clear() {
	s.staged = make(map[Position]bool)
}

// Revalidate recomputes the selection against a new model generation.
// Staged entries are matched by file path plus line kind and content,
// not by index, since hunks shift after every apply; entries without a
// match are dropped.
func (s *State) Revalidate(oldFiles, newFiles []diff.File) {
	remapped := make(map[Position]bool)
	claimed := make(map[Position]bool)

	for pos, staged := range s.staged {
		if !staged {
			continue
		}
		line, ok := lineAt(oldFiles, pos)
		if !ok || !line.Changed() {
			continue
		}
		path := oldFiles[pos.File].Path()
		if newPos, ok := findLine(newFiles, path, line, claimed); ok {
			remapped[newPos] = true
			claimed[newPos] = true
		}
	}

	s.staged = remapped
}

func (s *State) set(pos Position, value bool) {
	if value {
		s.staged[pos] = true
	} else {
		delete(s.staged, pos)
	}
}

func (s *State) anyUnstaged(files []diff.File, file, fromHunk, toHunk int) bool {
	for h := fromHunk; h < toHunk; h++ {
		for l, line := range files[file].Hunks[h].Lines {
			if line.Changed() && !s.staged[Position{File: file, Hunk: h, Line: l}] {
				return true
			}
		}
	}
	return false
}

func (s *State) setHunks(files []diff.File, file, fromHunk, toHunk int, value bool) {
	for h := fromHunk; h < toHunk; h++ {
		for l, line := range files[file].Hunks[h].Lines {
			if line.Changed() {
				s.set(Position{File: file, Hunk: h, Line: l}, value)
			}
		}
	}
}

func lineAt(files []diff.File, pos Position) (diff.Line, bool) {
	if pos.File < 0 || pos.File >= len(files) {
		return diff.Line{}, false
	}
	f := files[pos.File]
	if pos.Hunk < 0 || pos.Hunk >= len(f.Hunks) {
		return diff.Line{}, false
	}
	h := f.Hunks[pos.Hunk]
	if pos.Line < 0 || pos.Line >= len(h.Lines) {
		return diff.Line{}, false
	}
	return h.Lines[pos.Line], true
}

// pairOf finds the modification partner of a changed line: within the
// contiguous run of changed lines containing pos, the i-th deletion
// pairs with the i-th addition. Surplus lines have no partner.
func pairOf(files []diff.File, pos Position) (Position, bool) {
	lines := files[pos.File].Hunks[pos.Hunk].Lines

	start := pos.Line
	for start > 0 && lines[start-1].Changed() {
		start--
	}
	end := pos.Line
	for end < len(lines)-1 && lines[end+1].Changed() {
		end++
	}

	var deletions, additions []int
	for i := start; i <= end; i++ {
		switch lines[i].Kind {
		case diff.Deletion:
			deletions = append(deletions, i)
		case diff.Addition:
			additions = append(additions, i)
		}
	}

	for i := range deletions {
		if i >= len(additions) {
			break
		}
		if deletions[i] == pos.Line {
			return Position{File: pos.File, Hunk: pos.Hunk, Line: additions[i]}, true
		}
		if additions[i] == pos.Line {
			return Position{File: pos.File, Hunk: pos.Hunk, Line: deletions[i]}, true
		}
	}
	return Position{}, false
}

// findLine locates an unclaimed line in the new model with the same
// path, kind and text.
func findLine(files []diff.File, path string, want diff.Line, claimed map[Position]bool) (Position, bool) {
	for f, file := range files {
		if file.Path() != path {
			continue
		}
		for h, hunk := range file.Hunks {
			for l, line := range hunk.Lines {
				pos := Position{File: f, Hunk: h, Line: l}
				if claimed[pos] {
					continue
				}
				if line.Kind == want.Kind && line.Text == want.Text {
					return pos, true
				}
			}
		}
	}
	return Position{}, false
}
