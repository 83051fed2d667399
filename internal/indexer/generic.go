package indexer

import (
	"regexp"
	"strings"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/indexer/parsers"
)

// heuristicSpec configures a regex-based declaration finder for a
// language with no bundled tree-sitter grammar. It is deliberately
// coarser than the AST-driven parsers: a single-line regex match anchors
// the declaration's start, and the span extends to the line where the
// braces opened from that line balance back to zero (Python-style
// indentation is not handled here; those languages have real grammars).
type heuristicSpec struct {
	declPattern *regexp.Regexp // capture group 1 = kind literal, group 2 = name
	importPattern *regexp.Regexp
}

var heuristics = map[chunk.Language]heuristicSpec{
	chunk.LangCSharp: {
		declPattern:   regexp.MustCompile(`^\s*(?:public|private|protected|internal|static|\s)*\b(class|interface|struct)\s+([A-Za-z_]\w*)`),
		importPattern: regexp.MustCompile(`^\s*using\s+([\w.]+)\s*;`),
	},
	chunk.LangCPP: {
		declPattern:   regexp.MustCompile(`^\s*(?:template\s*<[^>]*>\s*)?(class|struct)\s+([A-Za-z_]\w*)`),
		importPattern: regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`),
	},
	chunk.LangKotlin: {
		declPattern:   regexp.MustCompile(`^\s*(?:public|private|internal|open|abstract|\s)*\b(class|interface|object|fun)\s+([A-Za-z_]\w*)`),
		importPattern: regexp.MustCompile(`^\s*import\s+([\w.]+)`),
	},
	chunk.LangSwift: {
		declPattern:   regexp.MustCompile(`^\s*(?:public|private|internal|final|open|\s)*\b(class|struct|protocol|func)\s+([A-Za-z_]\w*)`),
		importPattern: regexp.MustCompile(`^\s*import\s+([\w.]+)`),
	},
	chunk.LangShell: {
		declPattern:   regexp.MustCompile(`^\s*(?:function\s+)?([A-Za-z_][\w.]*)\s*\(\)\s*\{?`),
		importPattern: regexp.MustCompile(`^\s*(?:source|\.)\s+([^\s]+)`),
	},
}

// heuristicDeclKind maps the regex's matched keyword to a chunk.Kind.
func heuristicDeclKind(lang chunk.Language, keyword string) chunk.Kind {
	switch keyword {
	case "class", "struct", "object":
		return chunk.KindClass
	case "interface", "protocol", "trait":
		return chunk.KindInterface
	case "fun", "func":
		return chunk.KindFunction
	default:
		if lang == chunk.LangShell {
			return chunk.KindFunction
		}
		return chunk.KindBlock
	}
}

// ParseHeuristic runs the line-oriented regex declaration finder for
// languages with no tree-sitter grammar in this repository's dependency
// set. Brace languages have their declaration span closed by brace
// balance; indentation-sensitive constructs are intentionally not
// modeled — only languages without a real grammar reach this path, and
// for those this is best-effort, matching allowance for
// partial, best-effort results.
func ParseHeuristic(lang chunk.Language, source []byte) *parsers.Result {
	spec, ok := heuristics[lang]
	if !ok {
		return &parsers.Result{}
	}

	lines := strings.Split(string(source), "\n")
	result := &parsers.Result{}

	for i, line := range lines {
		if m := spec.importPattern.FindStringSubmatch(line); m != nil {
			result.Imports = append(result.Imports, m[1])
			continue
		}
		m := spec.declPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var keyword, name string
		if len(m) >= 3 {
			keyword, name = m[1], m[2]
		} else if len(m) == 2 {
			keyword, name = "", m[1]
		}
		end := closeBraceSpan(lines, i)
		result.Declarations = append(result.Declarations, parsers.Declaration{
			Kind:      heuristicDeclKind(lang, keyword),
			Name:      name,
			StartLine: i + 1,
			EndLine:   end + 1,
		})
	}

	return result
}

// closeBraceSpan returns the 0-indexed line where the brace opened on
// startLine balances back to zero, or startLine itself if no brace is
// found on that line (e.g. a Swift protocol requirement list on one
// line).
func closeBraceSpan(lines []string, startLine int) int {
	depth := 0
	seenOpen := false
	for i := startLine; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
			}
		}
		if seenOpen && depth <= 0 {
			return i
		}
	}
	return startLine
}
