// Package diff parses unified diff text into an addressable model of
// files, hunks and lines. Parsing is pure: no repository access, no
// mutation of the input, and the resulting values are never modified by
// this package once returned.
package diff

import "fmt"

// FileKind classifies the operation a file header describes.
type FileKind int

const (
	FileModified FileKind = iota
	FileAdded
	FileDeleted
	FileRenamed
	FileCopied
)

// String returns the lowercase name of the file kind.
func (k FileKind) String() string {
	switch k {
	case FileAdded:
		return "added"
	case FileDeleted:
		return "deleted"
	case FileRenamed:
		return "renamed"
	case FileCopied:
		return "copied"
	default:
		return "modified"
	}
}

// File is one changed path in a diff. A new snapshot is built on every
// refresh; nothing holds a File across refreshes except by path.
type File struct {
	OldPath string // empty for added files
	NewPath string // empty for deleted files
	Kind    FileKind
	Binary  bool

	// Untracked is set by the caller for files whose diff was
	// synthesized against /dev/null; Parse never sets it.
	Untracked bool

	// HeaderLine is the raw "diff --git ..." line and Extended the raw
	// header lines that follow it up to the first hunk (mode changes,
	// index line, rename pairs, ---/+++). Both are re-emitted verbatim
	// when a partial patch is synthesized, preserving quoting exactly.
	HeaderLine string
	Extended   []string

	Hunks []Hunk
}

// Path returns the path the file is listed under: the new path when it
// exists, the old one for deletions.
func (f File) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Stats counts the addition and deletion lines across all hunks.
func (f File) Stats() (additions, deletions int) {
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case Addition:
				additions++
			case Deletion:
				deletions++
			}
		}
	}
	return additions, deletions
}

// Hunk is one contiguous changed region. The four header counts always
// match the lines the hunk holds; Parse rejects input where they do not.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string // trailing context after the closing @@, if any
	Lines    []Line
}

// Header renders the "@@ -a,b +c,d @@" line for the hunk.
func (h Hunk) Header() string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

// LineKind classifies a hunk line by its leading marker.
type LineKind int

const (
	Context LineKind = iota
	Addition
	Deletion
)

// Marker returns the single-character prefix used in patch text.
func (k LineKind) Marker() byte {
	switch k {
	case Addition:
		return '+'
	case Deletion:
		return '-'
	default:
		return ' '
	}
}

// Line is a single hunk line. Text excludes the marker. OldNumber and
// NewNumber are one-based line numbers in their respective versions,
// zero when the line does not exist on that side.
type Line struct {
	Kind      LineKind
	Text      string
	OldNumber int
	NewNumber int

	// NoNewline marks the line carrying a trailing
	// "\ No newline at end of file" annotation.
	NoNewline bool
}

// Changed reports whether the line is an addition or deletion.
func (l Line) Changed() bool {
	return l.Kind != Context
}
