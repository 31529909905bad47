package diff

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed reports diff text whose hunk headers disagree with the
// lines that follow them. It is fatal for the refresh that produced the
// text: a model built from it would synthesize corrupt patches.
var ErrMalformed = errors.New("malformed diff")

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)

// parser carries the state threaded through one Parse call.
type parser struct {
	files []File
	file  *File
	hunk  *Hunk

	// remaining declared lines for the open hunk; both reach zero
	// exactly when the hunk is complete.
	remOld int
	remNew int

	oldNo int
	newNo int
}

// Parse splits raw unified diff text on file and hunk boundaries and
// classifies every hunk line by its leading marker. It returns
// ErrMalformed when a hunk header's declared counts do not match the
// lines present before the next boundary.
func Parse(raw string) ([]File, error) {
	p := &parser{}

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSuffix(rawLine, "\r")

		if strings.HasPrefix(line, "diff --git ") {
			if err := p.flushFile(); err != nil {
				return nil, err
			}
			p.startFile(line)
			continue
		}

		if p.file == nil {
			// Preamble before the first file header is ignored.
			continue
		}

		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			if err := p.flushHunk(); err != nil {
				return nil, err
			}
			p.startHunk(m)
			continue
		}

		if p.hunk == nil {
			p.headerLine(line)
			continue
		}

		if err := p.hunkLine(line); err != nil {
			return nil, err
		}
	}

	if err := p.flushFile(); err != nil {
		return nil, err
	}
	return p.files, nil
}

func (p *parser) startFile(line string) {
	f := File{HeaderLine: line, Kind: FileModified}
	f.OldPath, f.NewPath = splitGitPaths(strings.TrimPrefix(line, "diff --git "))
	p.file = &f
}

func (p *parser) startHunk(m []string) {
	h := Hunk{
		OldStart: atoiOr(m[1], 0),
		OldCount: countOr(m[2]),
		NewStart: atoiOr(m[3], 0),
		NewCount: countOr(m[4]),
		Section:  strings.TrimSpace(m[5]),
	}
	p.hunk = &h
	p.remOld = h.OldCount
	p.remNew = h.NewCount
	p.oldNo = h.OldStart
	p.newNo = h.NewStart
}

// headerLine consumes an extended header line between "diff --git" and
// the first hunk, keeping the raw text and folding its meaning into the
// file's flags and paths.
func (p *parser) headerLine(line string) {
	f := p.file
	f.Extended = append(f.Extended, line)

	switch {
	case strings.HasPrefix(line, "new file mode "):
		f.Kind = FileAdded
	case strings.HasPrefix(line, "deleted file mode "):
		f.Kind = FileDeleted
	case strings.HasPrefix(line, "rename from "):
		f.Kind = FileRenamed
		f.OldPath = unquotePath(strings.TrimPrefix(line, "rename from "))
	case strings.HasPrefix(line, "rename to "):
		f.Kind = FileRenamed
		f.NewPath = unquotePath(strings.TrimPrefix(line, "rename to "))
	case strings.HasPrefix(line, "copy from "):
		f.Kind = FileCopied
		f.OldPath = unquotePath(strings.TrimPrefix(line, "copy from "))
	case strings.HasPrefix(line, "copy to "):
		f.Kind = FileCopied
		f.NewPath = unquotePath(strings.TrimPrefix(line, "copy to "))
	case strings.HasPrefix(line, "Binary files ") || line == "GIT binary patch":
		f.Binary = true
	case strings.HasPrefix(line, "--- "):
		if token := unquotePath(strings.TrimPrefix(line, "--- ")); token == "/dev/null" {
			f.OldPath = ""
			if f.Kind == FileModified {
				f.Kind = FileAdded
			}
		} else {
			f.OldPath = stripPrefixDir(token)
		}
	case strings.HasPrefix(line, "+++ "):
		if token := unquotePath(strings.TrimPrefix(line, "+++ ")); token == "/dev/null" {
			f.NewPath = ""
			if f.Kind == FileModified {
				f.Kind = FileDeleted
			}
		} else {
			f.NewPath = stripPrefixDir(token)
		}
	}
}

func (p *parser) hunkLine(line string) error {
	h := p.hunk

	if strings.HasPrefix(line, `\`) {
		// "\ No newline at end of file" annotates the line before it.
		if n := len(h.Lines); n > 0 {
			h.Lines[n-1].NoNewline = true
		}
		return nil
	}

	if line == "" && p.remOld == 0 && p.remNew == 0 {
		// Trailing artifact of splitting on the final newline.
		return nil
	}

	var l Line
	marker := byte(' ')
	text := ""
	if line != "" {
		marker = line[0]
		text = line[1:]
	}

	switch marker {
	case '+':
		l = Line{Kind: Addition, Text: text, NewNumber: p.newNo}
		p.newNo++
		p.remNew--
	case '-':
		l = Line{Kind: Deletion, Text: text, OldNumber: p.oldNo}
		p.oldNo++
		p.remOld--
	case ' ':
		l = Line{Kind: Context, Text: text, OldNumber: p.oldNo, NewNumber: p.newNo}
		p.oldNo++
		p.newNo++
		p.remOld--
		p.remNew--
	default:
		return p.malformed("unexpected line %q inside hunk", line)
	}

	if p.remOld < 0 || p.remNew < 0 {
		return p.malformed("more lines than the header declared")
	}

	h.Lines = append(h.Lines, l)
	return nil
}

func (p *parser) flushHunk() error {
	if p.hunk == nil {
		return nil
	}
	if p.remOld != 0 || p.remNew != 0 {
		return p.malformed("declared %d/%d lines, %d/%d missing",
			p.hunk.OldCount, p.hunk.NewCount, p.remOld, p.remNew)
	}
	p.file.Hunks = append(p.file.Hunks, *p.hunk)
	p.hunk = nil
	return nil
}

func (p *parser) flushFile() error {
	if p.file == nil {
		return nil
	}
	if err := p.flushHunk(); err != nil {
		return err
	}
	p.files = append(p.files, *p.file)
	p.file = nil
	return nil
}

func (p *parser) malformed(format string, args ...any) error {
	where := "diff"
	if p.file != nil {
		where = p.file.Path()
		if p.hunk != nil {
			where += " " + p.hunk.Header()
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformed, where, fmt.Sprintf(format, args...))
}

// splitGitPaths extracts the two paths from the remainder of a
// "diff --git a/old b/new" line. Quoted tokens are unescaped; for the
// unquoted form the split happens on the " b/" separator, which is
// unambiguous for every path git itself would leave unquoted.
func splitGitPaths(rest string) (oldPath, newPath string) {
	if strings.HasPrefix(rest, `"`) {
		if unquoted, remainder, ok := unquoteSegment(rest); ok {
			oldPath = stripPrefixDir(unquoted)
			newPath = stripPrefixDir(unquotePath(strings.TrimSpace(remainder)))
			return oldPath, newPath
		}
	}
	if idx := strings.Index(rest, " b/"); idx >= 0 {
		return strings.TrimPrefix(rest[:idx], "a/"), rest[idx+len(" b/"):]
	}
	return "", ""
}

// unquoteSegment unquotes a leading double-quoted token and returns the
// unparsed remainder.
func unquoteSegment(s string) (string, string, bool) {
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", false
			}
			return unquoted, s[i+1:], true
		}
	}
	return "", "", false
}

func unquotePath(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
	}
	return s
}

// stripPrefixDir removes the a/ or b/ prefix git puts on header paths.
func stripPrefixDir(s string) string {
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		return s[2:]
	}
	return s
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// countOr resolves an omitted hunk count, which unified diff defines
// as 1.
func countOr(s string) int {
	if s == "" {
		return 1
	}
	return atoiOr(s, 1)
}
