package compressor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-dev/prism/internal/chunk"
)

// Test Plan:
// - id, start_line, end_line, symbols are preserved at every level
// - light: blank-line runs collapse, line comments removed, docstrings kept
// - medium: block comments also removed
// - aggressive: deep nested bodies ellipsized, top-level signature kept verbatim
// - every surviving line exists in the original content (no fabrication)
// - estimated_tokens is recomputed after compression
// - an unknown language is left content-unchanged but still recounted

func baseChunk(content string, lang chunk.Language) chunk.Chunk {
	return chunk.Chunk{
		ID:              "fixed-id",
		FilePath:        "a.go",
		Language:        lang,
		StartLine:       1,
		EndLine:         strings.Count(content, "\n") + 1,
		Content:         content,
		Symbols:         []string{"Foo"},
		EstimatedTokens: 9999,
	}
}

func TestCompress_PreservesIdentity(t *testing.T) {
	t.Parallel()
	c := baseChunk("func Foo() {\n\t// a comment\n\treturn\n}\n", chunk.LangGo)
	out := Compress(c, Light)

	assert.Equal(t, c.ID, out.ID)
	assert.Equal(t, c.StartLine, out.StartLine)
	assert.Equal(t, c.EndLine, out.EndLine)
	assert.Equal(t, c.Symbols, out.Symbols)
}

func TestCompress_Light_RemovesLineCommentsCollapsesBlankRuns(t *testing.T) {
	t.Parallel()
	src := "func Foo() {\n\t// drop me\n\treturn 1 // keep the string \"// not a comment\"\n\n\n\n}\n"
	c := baseChunk(src, chunk.LangGo)
	out := Compress(c, Light)

	assert.NotContains(t, out.Content, "drop me")
	assert.NotContains(t, out.Content, "\n\n\n\n")
}

func TestCompress_Light_PreservesPythonDocstring(t *testing.T) {
	t.Parallel()
	src := "def foo():\n    \"\"\"keep this docstring\"\"\"\n    # drop this\n    return 1\n"
	c := baseChunk(src, chunk.LangPython)
	out := Compress(c, Light)

	assert.Contains(t, out.Content, "keep this docstring")
	assert.NotContains(t, out.Content, "drop this")
}

func TestCompress_Medium_RemovesBlockComments(t *testing.T) {
	t.Parallel()
	src := "func Foo() {\n/* block\ncomment */\n\treturn 1\n}\n"
	c := baseChunk(src, chunk.LangGo)
	out := Compress(c, Medium)

	assert.NotContains(t, out.Content, "block")
	assert.Contains(t, out.Content, "return 1")
}

func TestCompress_Aggressive_EllipsizesDeepNestingPreservesSignature(t *testing.T) {
	t.Parallel()
	src := strings.Join([]string{
		"func Outer(x int) int {",
		"\tif x > 0 {",
		"\t\tfor i := 0; i < x; i++ {",
		"\t\t\tif i%2 == 0 {",
		"\t\t\t\tprintln(i)",
		"\t\t\t}",
		"\t\t}",
		"\t}",
		"\treturn x",
		"}",
		"",
	}, "\n")
	c := baseChunk(src, chunk.LangGo)
	out := Compress(c, Aggressive)

	assert.Contains(t, out.Content, "func Outer(x int) int {", "top-level signature preserved verbatim")
	assert.Contains(t, out.Content, ellipsisMarker)
}

func TestCompress_NoFabrication(t *testing.T) {
	t.Parallel()
	src := "func Foo() {\n\t// gone\n\treturn 1\n}\n"
	c := baseChunk(src, chunk.LangGo)

	for _, level := range []Level{Light, Medium, Aggressive} {
		out := Compress(c, level)
		assert.True(t, linesPreserved(src, out.Content), "level %s fabricated a line", level)
	}
}

func TestLinesPreserved_RejectsFabricatedLine(t *testing.T) {
	t.Parallel()
	assert.False(t, linesPreserved("func Foo() {\n\treturn 1\n}\n", "func Foo() {\n\treturn 2\n}\n"))
}

func TestLinesPreserved_AcceptsEllipsisAndBlankLines(t *testing.T) {
	t.Parallel()
	assert.True(t, linesPreserved("func Foo() {\n\treturn 1\n}\n", "func Foo() {\n"+ellipsisMarker+"\n}\n"))
}

func TestCompress_RecomputesEstimatedTokens(t *testing.T) {
	t.Parallel()
	c := baseChunk("func Foo() {\n\t// a comment that should be stripped out entirely\n\treturn 1\n}\n", chunk.LangGo)
	require.Equal(t, 9999, c.EstimatedTokens)
	out := Compress(c, Light)
	assert.NotEqual(t, 9999, out.EstimatedTokens)
}

func TestCompress_UnknownLanguageLeavesContentUnchanged(t *testing.T) {
	t.Parallel()
	c := baseChunk("some content\n", chunk.Language("cobol"))
	out := Compress(c, Aggressive)
	assert.Equal(t, c.Content, out.Content)
	assert.NotEqual(t, c.EstimatedTokens, out.EstimatedTokens)
}
