package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modifiedFileDiff = `diff --git a/main.go b/main.go
index 1f4f2b3..9c0e8d1 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,5 @@ package main
 func main() {
-	run()
+	if err := run(); err != nil {
+		panic(err)
+	}
 }
`

func TestParseModifiedFile(t *testing.T) {
	files, err := Parse(modifiedFileDiff)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "main.go", f.OldPath)
	assert.Equal(t, "main.go", f.NewPath)
	assert.Equal(t, FileModified, f.Kind)
	assert.False(t, f.Binary)
	assert.Equal(t, "diff --git a/main.go b/main.go", f.HeaderLine)
	assert.Len(t, f.Extended, 3)

	require.Len(t, f.Hunks, 1)
	h := f.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 3, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 5, h.NewCount)
	assert.Equal(t, "package main", h.Section)

	require.Len(t, h.Lines, 6)
	assert.Equal(t, Context, h.Lines[0].Kind)
	assert.Equal(t, Deletion, h.Lines[1].Kind)
	assert.Equal(t, "\trun()", h.Lines[1].Text)
	assert.Equal(t, Addition, h.Lines[2].Kind)
	assert.Equal(t, Context, h.Lines[5].Kind)

	// Line numbers advance independently per side.
	assert.Equal(t, 1, h.Lines[0].OldNumber)
	assert.Equal(t, 1, h.Lines[0].NewNumber)
	assert.Equal(t, 2, h.Lines[1].OldNumber)
	assert.Equal(t, 0, h.Lines[1].NewNumber)
	assert.Equal(t, 0, h.Lines[2].OldNumber)
	assert.Equal(t, 2, h.Lines[2].NewNumber)
	assert.Equal(t, 3, h.Lines[5].OldNumber)
	assert.Equal(t, 5, h.Lines[5].NewNumber)
}

func TestParseMultipleFiles(t *testing.T) {
	raw := modifiedFileDiff + `diff --git a/other.go b/other.go
index aaa..bbb 100644
--- a/other.go
+++ b/other.go
@@ -10,2 +10,2 @@
 ctx
-old
+new
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.go", files[0].Path())
	assert.Equal(t, "other.go", files[1].Path())
	require.Len(t, files[1].Hunks, 1)
	assert.Equal(t, 10, files[1].Hunks[0].OldStart)
}

func TestParseNewFile(t *testing.T) {
	raw := `diff --git a/notes.txt b/notes.txt
new file mode 100644
index 0000000..3b2aed8
--- /dev/null
+++ b/notes.txt
@@ -0,0 +1,2 @@
+first
+second
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, FileAdded, f.Kind)
	assert.Empty(t, f.OldPath)
	assert.Equal(t, "notes.txt", f.NewPath)
	assert.Equal(t, "notes.txt", f.Path())
	require.Len(t, f.Hunks, 1)
	assert.Equal(t, 0, f.Hunks[0].OldStart)
	assert.Equal(t, 0, f.Hunks[0].OldCount)
	assert.Equal(t, 2, f.Hunks[0].NewCount)
}

func TestParseDeletedFile(t *testing.T) {
	raw := `diff --git a/gone.txt b/gone.txt
deleted file mode 100644
index 3b2aed8..0000000
--- a/gone.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-first
-second
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, FileDeleted, files[0].Kind)
	assert.Equal(t, "gone.txt", files[0].Path())
	assert.Empty(t, files[0].NewPath)
}

func TestParseRenameWithoutContent(t *testing.T) {
	raw := `diff --git a/old.go b/new.go
similarity index 100%
rename from old.go
rename to new.go
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, FileRenamed, f.Kind)
	assert.Equal(t, "old.go", f.OldPath)
	assert.Equal(t, "new.go", f.NewPath)
	assert.Empty(t, f.Hunks)
}

func TestParseBinaryFile(t *testing.T) {
	raw := `diff --git a/logo.png b/logo.png
index 1234567..89abcde 100644
Binary files a/logo.png and b/logo.png differ
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].Binary)
	assert.Empty(t, files[0].Hunks)
}

func TestParseOmittedCountsDefaultToOne(t *testing.T) {
	raw := `diff --git a/one.txt b/one.txt
index aaa..bbb 100644
--- a/one.txt
+++ b/one.txt
@@ -1 +1 @@
-old
+new
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)
	h := files[0].Hunks[0]
	assert.Equal(t, 1, h.OldCount)
	assert.Equal(t, 1, h.NewCount)
	require.Len(t, h.Lines, 2)
}

func TestParseNoNewlineMarker(t *testing.T) {
	raw := `diff --git a/eof.txt b/eof.txt
index aaa..bbb 100644
--- a/eof.txt
+++ b/eof.txt
@@ -1 +1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`
	files, err := Parse(raw)
	require.NoError(t, err)
	h := files[0].Hunks[0]
	require.Len(t, h.Lines, 2)
	assert.True(t, h.Lines[0].NoNewline)
	assert.True(t, h.Lines[1].NoNewline)
}

func TestParseQuotedPaths(t *testing.T) {
	raw := `diff --git "a/with space.txt" "b/with space.txt"
index aaa..bbb 100644
--- "a/with space.txt"
+++ "b/with space.txt"
@@ -1 +1 @@
-old
+new
`
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "with space.txt", files[0].Path())
}

func TestParseCountMismatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing lines before EOF",
			raw: `diff --git a/short.txt b/short.txt
index aaa..bbb 100644
--- a/short.txt
+++ b/short.txt
@@ -1,3 +1,3 @@
 one
 two
`,
		},
		{
			name: "missing lines before next hunk",
			raw: `diff --git a/short.txt b/short.txt
index aaa..bbb 100644
--- a/short.txt
+++ b/short.txt
@@ -1,3 +1,3 @@
 one
 two
@@ -10,1 +10,1 @@
 ten
`,
		},
		{
			name: "surplus lines",
			raw: `diff --git a/long.txt b/long.txt
index aaa..bbb 100644
--- a/long.txt
+++ b/long.txt
@@ -1,1 +1,1 @@
 one
 two
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseIgnoresPreamble(t *testing.T) {
	raw := "some prologue the tool printed\n" + modifiedFileDiff
	files, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestParseEmptyInput(t *testing.T) {
	files, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseCRLFInput(t *testing.T) {
	raw := strings.ReplaceAll(modifiedFileDiff, "\n", "\r\n")
	files, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Len(t, files[0].Hunks[0].Lines, 6)
}

func TestFileStats(t *testing.T) {
	files, err := Parse(modifiedFileDiff)
	require.NoError(t, err)
	adds, dels := files[0].Stats()
	assert.Equal(t, 3, adds)
	assert.Equal(t, 1, dels)
}

func TestHunkHeaderRendering(t *testing.T) {
	h := Hunk{OldStart: 3, OldCount: 4, NewStart: 3, NewCount: 6, Section: "func run()"}
	assert.Equal(t, "@@ -3,4 +3,6 @@ func run()", h.Header())

	plain := Hunk{OldStart: 1, OldCount: 1, NewStart: 1, NewCount: 1}
	assert.Equal(t, "@@ -1,1 +1,1 @@", plain.Header())
}
