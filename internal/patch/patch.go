// Package patch synthesizes applyable unified patches from a diff model
// and a selection. Synthesis is pure: the output is structurally
// self-consistent from the model's own data, independent of repository
// state, so a bad patch can only mean a bug here and never a racing
// index.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cszczepaniak/go-istage/internal/diff"
	"github.com/cszczepaniak/go-istage/internal/selection"
)

// ErrEmpty signals that no line of the file is selected. It is a no-op
// signal, not a failure: callers skip the apply and move on.
var ErrEmpty = errors.New("nothing selected")

// Build constructs the patch that stages the selected lines of one
// file. Every context line of a touched hunk is re-included; deletions
// not selected are emitted as context (the index still has them);
// additions not selected are omitted. Hunk headers are recomputed from
// the emitted lines, with the running offset earlier hunks introduce
// folded into each new-start.
func Build(file diff.File, selected []selection.Position) (string, error) {
	return synthesize(file, selected, false)
}

// Invert constructs the patch that, applied in reverse against the
// index, unstages the selected lines. The roles swap: additions not
// selected are emitted as context (they stay in the index), deletions
// not selected are omitted (the index no longer has them).
func Invert(file diff.File, selected []selection.Position) (string, error) {
	return synthesize(file, selected, true)
}

func synthesize(file diff.File, selected []selection.Position, invert bool) (string, error) {
	picked := make(map[[2]int]bool, len(selected))
	for _, pos := range selected {
		picked[[2]int{pos.Hunk, pos.Line}] = true
	}
	if len(picked) == 0 {
		return "", ErrEmpty
	}

	partial := isPartial(file, picked)

	var hunks []string
	delta := 0
	for h, hunk := range file.Hunks {
		body, oldCount, newCount, any := emitHunk(hunk, h, picked, invert)
		if !any {
			continue
		}

		var oldStart, newStart int
		if invert {
			newStart = hunk.NewStart
			oldStart = newStart + delta
			switch {
			case oldCount == 0:
				oldStart--
			case newCount == 0:
				oldStart++
			}
			delta += oldCount - newCount
		} else {
			oldStart = hunk.OldStart
			newStart = oldStart + delta
			switch {
			case oldCount == 0:
				newStart++
			case newCount == 0:
				newStart--
			}
			delta += newCount - oldCount
		}

		header := diff.Hunk{
			OldStart: oldStart, OldCount: oldCount,
			NewStart: newStart, NewCount: newCount,
			Section: hunk.Section,
		}.Header()
		hunks = append(hunks, header+"\n"+body)
	}

	if len(hunks) == 0 {
		return "", ErrEmpty
	}

	var b strings.Builder
	b.WriteString(file.HeaderLine)
	b.WriteByte('\n')
	for _, line := range fileHeaders(file, partial, invert) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, h := range hunks {
		b.WriteString(h)
	}
	return b.String(), nil
}

// emitHunk renders one hunk's body for the selection, returning the
// recomputed counts and whether any selected line was emitted.
func emitHunk(hunk diff.Hunk, hunkIdx int, picked map[[2]int]bool, invert bool) (body string, oldCount, newCount int, any bool) {
	var b strings.Builder

	emit := func(marker byte, line diff.Line) {
		b.WriteByte(marker)
		b.WriteString(line.Text)
		b.WriteByte('\n')
		if line.NoNewline {
			b.WriteString("\\ No newline at end of file\n")
		}
		switch marker {
		case '+':
			newCount++
		case '-':
			oldCount++
		default:
			oldCount++
			newCount++
		}
	}

	for l, line := range hunk.Lines {
		sel := picked[[2]int{hunkIdx, l}]
		switch line.Kind {
		case diff.Context:
			emit(' ', line)
		case diff.Deletion:
			switch {
			case sel:
				emit('-', line)
				any = true
			case invert:
				// Already absent from the index; not part of this patch.
			default:
				emit(' ', line)
			}
		case diff.Addition:
			switch {
			case sel:
				emit('+', line)
				any = true
			case invert:
				emit(' ', line)
			default:
				// Not being staged; the index side does not have it.
			}
		}
	}

	return b.String(), oldCount, newCount, any
}

// isPartial reports whether some changed line of the file is left out
// of the selection.
func isPartial(file diff.File, picked map[[2]int]bool) bool {
	for h, hunk := range file.Hunks {
		for l, line := range hunk.Lines {
			if line.Changed() && !picked[[2]int{h, l}] {
				return true
			}
		}
	}
	return false
}

// fileHeaders returns the extended header lines to emit. They pass
// through verbatim except in the two shapes where a partial selection
// changes the nature of the file operation: partially staging a
// deletion leaves the file alive, and partially unstaging an added file
// keeps it in the index. Both must read as plain modifications or git
// rejects the apply.
func fileHeaders(file diff.File, partial, invert bool) []string {
	demoteDeleted := partial && !invert && file.Kind == diff.FileDeleted
	demoteAdded := partial && invert && file.Kind == diff.FileAdded
	if !demoteDeleted && !demoteAdded {
		return file.Extended
	}

	path := file.Path()
	out := make([]string, 0, len(file.Extended))
	for _, line := range file.Extended {
		switch {
		case demoteDeleted && strings.HasPrefix(line, "deleted file mode "):
			continue
		case demoteAdded && strings.HasPrefix(line, "new file mode "):
			continue
		case demoteDeleted && line == "+++ /dev/null":
			out = append(out, "+++ "+quotedHeaderPath("b/", path))
		case demoteAdded && line == "--- /dev/null":
			out = append(out, "--- "+quotedHeaderPath("a/", path))
		default:
			out = append(out, line)
		}
	}
	return out
}

// quotedHeaderPath renders a header path with the given prefix, quoting
// the way git does when the path needs it.
func quotedHeaderPath(prefix, path string) string {
	full := prefix + path
	if strings.ContainsAny(full, " \t\"\\") {
		return fmt.Sprintf("%q", full)
	}
	return full
}
