// Package compressor implements the Compressor (C8): shrinking a
// selected chunk's content at one of three levels while preserving its
// identity, line anchors, and top-level signatures.
package compressor

import (
	"regexp"
	"strings"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/tokencount"
)

// Level is the compression aggressiveness.
type Level string

const (
	Light      Level = "light"
	Medium     Level = "medium"
	Aggressive Level = "aggressive"
)

// nestingEllipsisDepth is the nesting level (0 = top-level body) past
// which a block's contents are replaced by an ellipsis marker at the
// aggressive level.
const nestingEllipsisDepth = 2

const ellipsisMarker = "…"

// delimiters is the per-language comment-delimiter table: single-line
// prefixes, block comment pairs, and docstring/triple-quote pairs.
type delimiters struct {
	line       []string
	blockPairs [][2]string
	docPairs   [][2]string
}

var languageDelimiters = map[chunk.Language]delimiters{
	chunk.LangGo:         {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangJavaScript: {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangTypeScript: {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangJava:       {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangC:          {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangCPP:        {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangCSharp:     {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangKotlin:     {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangSwift:      {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangRust:       {line: []string{"//"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangPHP:        {line: []string{"//", "#"}, blockPairs: [][2]string{{"/*", "*/"}}},
	chunk.LangPython:     {line: []string{"#"}, docPairs: [][2]string{{`"""`, `"""`}, {"'''", "'''"}}},
	chunk.LangRuby:       {line: []string{"#"}, docPairs: [][2]string{{"=begin", "=end"}}},
	chunk.LangShell:      {line: []string{"#"}},
	chunk.LangYAML:       {line: []string{"#"}},
}

// Compress implements compress(chunk, level) → CodeChunk'.
func Compress(c chunk.Chunk, level Level) chunk.Chunk {
	d, known := languageDelimiters[c.Language]
	if !known {
		return recountOnly(c)
	}

	content := c.Content
	switch level {
	case Light:
		content = collapseBlankRuns(stripLineComments(content, d))
	case Medium:
		content = collapseBlankRuns(stripBlockComments(stripLineComments(content, d), d))
		content = normalizeWhitespace(content)
	case Aggressive:
		content = collapseBlankRuns(stripBlockComments(stripLineComments(content, d), d))
		content = normalizeWhitespace(content)
		content = ellipsizeDeepBlocks(content, c.Language)
	default:
		return recountOnly(c)
	}

	if !linesPreserved(c.Content, content) {
		return recountOnly(c)
	}

	out := c
	out.Content = content
	out.EstimatedTokens = tokencount.Estimate(content)
	return out
}

func recountOnly(c chunk.Chunk) chunk.Chunk {
	out := c
	out.EstimatedTokens = tokencount.Estimate(out.Content)
	return out
}

// stripLineComments removes a single-line comment delimiter to end of
// line when it occurs outside a string literal. Docstring/triple-quote
// spans are treated as opaque and never touched.
func stripLineComments(content string, d delimiters) string {
	if len(d.line) == 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	inDocstring := false
	var docClose string
	for i, line := range lines {
		if inDocstring {
			if strings.Contains(line, docClose) {
				inDocstring = false
			}
			continue
		}
		if opened, closeTok := docstringOpensOn(line, d); opened {
			inDocstring = !strings.Contains(afterFirst(line, closeTok), closeTok)
			docClose = closeTok
			continue
		}
		lines[i] = stripLineCommentFromLine(line, d.line)
	}
	return strings.Join(lines, "\n")
}

func docstringOpensOn(line string, d delimiters) (bool, string) {
	for _, pair := range d.docPairs {
		if strings.Contains(line, pair[0]) {
			return true, pair[1]
		}
	}
	return false, ""
}

func afterFirst(line, tok string) string {
	idx := strings.Index(line, tok)
	if idx < 0 {
		return ""
	}
	return line[idx+len(tok):]
}

// stripLineCommentFromLine removes the line-comment suffix, honoring
// matched single/double quotes so delimiters inside string literals are
// left alone.
func stripLineCommentFromLine(line string, prefixes []string) string {
	inSingle, inDouble := false, false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && (inSingle || inDouble):
			i++
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case !inSingle && !inDouble:
			for _, p := range prefixes {
				if matchesAt(runes, i, p) {
					return strings.TrimRight(string(runes[:i]), " \t")
				}
			}
		}
	}
	return line
}

func matchesAt(runes []rune, i int, prefix string) bool {
	pr := []rune(prefix)
	if i+len(pr) > len(runes) {
		return false
	}
	for j, pc := range pr {
		if runes[i+j] != pc {
			return false
		}
	}
	return true
}

// stripBlockComments removes /* ... */-style spans; an unterminated span
// is left untouched rather than risk fabrication. Delimiters inside
// string literals are not distinguished from real comment delimiters.
func stripBlockComments(content string, d delimiters) string {
	for _, pair := range d.blockPairs {
		content = removeBalancedSpans(content, pair[0], pair[1])
	}
	return content
}

func removeBalancedSpans(content, open, close string) string {
	var b strings.Builder
	rest := content
	for {
		idx := strings.Index(rest, open)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[idx+len(open):], close)
		if end < 0 {
			// unterminated; leave the rest untouched
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		spanned := rest[idx : idx+len(open)+end+len(close)]
		b.WriteString(strings.Repeat("\n", strings.Count(spanned, "\n")))
		rest = rest[idx+len(open)+end+len(close):]
	}
	return b.String()
}

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(content string) string {
	return blankRunPattern.ReplaceAllString(content, "\n\n")
}

var trailingWhitespace = regexp.MustCompile(`[ \t]+\n`)

func normalizeWhitespace(content string) string {
	content = trailingWhitespace.ReplaceAllString(content, "\n")
	return strings.TrimRight(content, " \t")
}

// ellipsizeDeepBlocks collapses the body of any brace block nested
// deeper than nestingEllipsisDepth into a single ellipsis line,
// preserving every top-level signature line verbatim. Languages that do
// not use braces are returned unchanged; indentation blocks are not
// collapsed.
func ellipsizeDeepBlocks(content string, lang chunk.Language) string {
	if usesBraces(lang) {
		return ellipsizeBraceBlocks(content)
	}
	return content
}

func usesBraces(lang chunk.Language) bool {
	switch lang {
	case chunk.LangGo, chunk.LangJavaScript, chunk.LangTypeScript, chunk.LangJava,
		chunk.LangC, chunk.LangCPP, chunk.LangCSharp, chunk.LangKotlin, chunk.LangSwift,
		chunk.LangRust, chunk.LangPHP:
		return true
	}
	return false
}

// ellipsizeBraceBlocks walks the content tracking brace depth outside
// string/char literals; once depth exceeds nestingEllipsisDepth, lines
// are replaced by a single ellipsis marker until the block closes.
func ellipsizeBraceBlocks(content string) string {
	lines := strings.Split(content, "\n")
	depth := 0
	var out []string
	collapsing := false
	for _, line := range lines {
		startDepth := depth
		opens, closes := braceDelta(line)
		depth += opens - closes

		switch {
		case startDepth <= nestingEllipsisDepth && depth > nestingEllipsisDepth:
			out = append(out, line)
			out = append(out, strings.Repeat(leadingWhitespace(line), 1)+ellipsisMarker)
			collapsing = true
		case collapsing && depth > nestingEllipsisDepth:
			// still inside the deep block; marker already emitted
		case collapsing && depth <= nestingEllipsisDepth:
			collapsing = false
			out = append(out, line)
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func leadingWhitespace(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	return line[:len(line)-len(trimmed)]
}

// braceDelta counts unquoted '{' and '}' occurrences on a line.
func braceDelta(line string) (opens, closes int) {
	inSingle, inDouble := false, false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && (inSingle || inDouble):
			i++
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case !inSingle && !inDouble && r == '{':
			opens++
		case !inSingle && !inDouble && r == '}':
			closes++
		}
	}
	return opens, closes
}

// linesPreserved checks that every surviving line of out appears
// somewhere in the original content, either verbatim or as the leading
// part of an original line — the no-fabrication guarantee. The relative
// order of the surviving lines is not checked.
func linesPreserved(original, out string) bool {
	origLines := strings.Split(original, "\n")
	outLines := strings.Split(out, "\n")
	origSet := make(map[string]struct{}, len(origLines))
	for _, l := range origLines {
		origSet[l] = struct{}{}
	}
	for _, l := range outLines {
		if l == "" || l == ellipsisMarker {
			continue
		}
		trimmed := strings.TrimSpace(l)
		if trimmed == ellipsisMarker {
			continue
		}
		if _, ok := origSet[l]; ok {
			continue
		}
		// Stripping a trailing comment or trailing whitespace leaves the
		// leading part of an original line; accept such a prefix match.
		matched := false
		for orig := range origSet {
			if strings.HasPrefix(orig, l) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
