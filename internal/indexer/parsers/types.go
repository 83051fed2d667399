// Package parsers implements the AST-driven declaration extraction used
// by the Indexer (C3) to find top-level function/class/method/interface
// spans. Each parser is tree-sitter-backed; languages
// without a bundled grammar fall back to the heuristic parser in the
// parent package.
package parsers

import "github.com/prism-dev/prism/internal/chunk"

// Declaration is a single top-level declaration span found by a parser.
type Declaration struct {
	Kind      chunk.Kind
	Name      string
	StartByte uint
	EndByte   uint
	StartLine int
	EndLine   int
}

// Result is the output of parsing one file's source.
type Result struct {
	Declarations []Declaration
	Imports      []string
	HasErrors    bool
}

// Parser extracts top-level declarations and imports from a source file
// in one language.
type Parser interface {
	Parse(source []byte) (*Result, error)
}
