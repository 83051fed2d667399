package indexer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/indexer/parsers"
	"github.com/prism-dev/prism/internal/tokencount"
)

// Indexer turns file content into CodeChunks, : AST
// declarations where a grammar is bundled, regex heuristics where one
// isn't, and fixed-size block splitting for whatever neither covers.
type Indexer struct {
	maxLines int
}

// New returns an Indexer that splits non-declaration regions into blocks
// of at most maxLines lines (DefaultMaxLines when maxLines <= 0).
func New(maxLines int) *Indexer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Indexer{maxLines: maxLines}
}

// Parse implements the parse(text, language) contract: declarations and
// imports only, with no file identity attached to the resulting chunks.
func (ix *Indexer) Parse(content []byte, lang chunk.Language) ParseResult {
	return ix.build("", content, lang, 0)
}

// IndexFile implements the index_file(path, text) contract: a complete
// list of content-addressed CodeChunks for one file.
func (ix *Indexer) IndexFile(path string, content []byte, lang chunk.Language, lastModified int64) []chunk.Chunk {
	return ix.build(chunk.NormalizePath(path), content, lang, lastModified).Chunks
}

func (ix *Indexer) build(path string, content []byte, lang chunk.Language, lastModified int64) ParseResult {
	switch lang {
	case chunk.LangTypeScript, chunk.LangJavaScript, chunk.LangPython, chunk.LangRust,
		chunk.LangGo, chunk.LangJava, chunk.LangC, chunk.LangCPP, chunk.LangCSharp,
		chunk.LangPHP, chunk.LangRuby, chunk.LangKotlin, chunk.LangSwift, chunk.LangShell,
		chunk.LangYAML, chunk.LangJSON, chunk.LangMarkdown, chunk.LangText:
	default:
		// An unrecognized language tag is unsupported: zero chunks, no error.
		return ParseResult{}
	}

	decls, imports, hasErrors := ix.declarations(content, lang)

	var functions, classes []string
	for _, d := range decls {
		switch d.Kind {
		case chunk.KindFunction, chunk.KindMethod:
			functions = append(functions, d.Name)
		case chunk.KindClass, chunk.KindInterface:
			classes = append(classes, d.Name)
		}
	}
	symbolSet := make(map[string]struct{}, len(functions)+len(classes))
	for _, n := range functions {
		symbolSet[n] = struct{}{}
	}
	for _, n := range classes {
		symbolSet[n] = struct{}{}
	}

	lines := strings.Split(string(content), "\n")
	offsets := lineByteOffsets(lines)
	sortedImports := chunk.SortImports(imports)

	var chunks []chunk.Chunk

	if lang == chunk.LangMarkdown {
		for _, section := range splitMarkdownSections(lines) {
			for _, span := range splitIntoBlocks(lines[section.start-1:section.end], section.start, offsets[section.start-1:], ix.maxLines) {
				chunks = append(chunks, ix.makeChunk(path, lang, chunk.KindBlock, "", span, symbolSet, sortedImports, lastModified))
			}
		}
		return ParseResult{Chunks: chunks, Functions: functions, Classes: classes, HasErrors: hasErrors}
	}

	sort.Slice(decls, func(i, j int) bool { return decls[i].StartLine < decls[j].StartLine })

	covered := make([]lineRange, 0, len(decls))
	for _, d := range decls {
		start, end := d.StartLine, d.EndLine
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		if end < start {
			end = start
		}
		covered = append(covered, lineRange{start: start, end: end})

		span := spanFor(lines, offsets, start, end)
		chunks = append(chunks, ix.makeChunk(path, lang, d.Kind, d.Name, span, symbolSet, sortedImports, lastModified))
	}

	for _, region := range remainingRegions(len(lines), covered) {
		regionLines := lines[region.start-1 : region.end]
		regionOffsets := offsets[region.start-1:]
		for _, span := range splitIntoBlocks(regionLines, region.start, regionOffsets, ix.maxLines) {
			chunks = append(chunks, ix.makeChunk(path, lang, chunk.KindBlock, "", span, symbolSet, sortedImports, lastModified))
		}
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].StartLine < chunks[j].StartLine })

	return ParseResult{Chunks: chunks, Functions: functions, Classes: classes, HasErrors: hasErrors}
}

func (ix *Indexer) declarations(content []byte, lang chunk.Language) ([]parsers.Declaration, []string, bool) {
	switch lang {
	case chunk.LangMarkdown, chunk.LangJSON, chunk.LangYAML, chunk.LangText:
		return nil, nil, false
	}

	if p, ok := parsers.ForLanguage(lang); ok {
		result, err := p.Parse(content)
		if err != nil {
			return nil, nil, true
		}
		imports := result.Imports
		if lang == chunk.LangRuby {
			imports = append(imports, rubyRequires(content)...)
		}
		return result.Declarations, imports, result.HasErrors
	}

	result := ParseHeuristic(lang, content)
	return result.Declarations, result.Imports, result.HasErrors
}

var rubyRequirePattern = regexp.MustCompile(`(?m)^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`)

func rubyRequires(content []byte) []string {
	matches := rubyRequirePattern.FindAllSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, string(m[1]))
	}
	return out
}

// spanFor builds a lineSpan for an arbitrary [start, end] line range,
// computing byte offsets from the precomputed per-line table.
func spanFor(lines []string, offsets []int, start, end int) lineSpan {
	text := strings.Join(lines[start-1:end], "\n")
	span := lineSpan{startLine: start, endLine: end, text: text, startByte: offsets[start-1]}
	if end < len(offsets) {
		span.endByte = offsets[end]
	} else {
		span.endByte = offsets[len(offsets)-1] + len(lines[len(lines)-1])
	}
	return span
}

func (ix *Indexer) makeChunk(path string, lang chunk.Language, kind chunk.Kind, name string, span lineSpan, symbolSet map[string]struct{}, imports []string, lastModified int64) chunk.Chunk {
	symbols := chunkSymbols(span.text, name, symbolSet)
	return chunk.Chunk{
		ID:              chunk.ID(path, span.startByte, span.endByte, span.text),
		FilePath:        path,
		Language:        lang,
		Kind:            kind,
		Name:            name,
		Content:         span.text,
		StartLine:       span.startLine,
		EndLine:         span.endLine,
		Symbols:         symbols,
		Imports:         imports,
		LastModified:    lastModified,
		EstimatedTokens: tokencount.Estimate(span.text),
	}
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// chunkSymbols reports the declared names (this chunk's own name, plus
// any other file-level declaration referenced in its content) used by
// the Scorer's symbol-match feature.
func chunkSymbols(content, ownName string, declared map[string]struct{}) []string {
	var found []string
	if ownName != "" {
		found = append(found, ownName)
	}
	for _, tok := range identifierPattern.FindAllString(content, -1) {
		if tok == ownName {
			continue
		}
		if _, ok := declared[tok]; ok {
			found = append(found, tok)
		}
	}
	return chunk.SortSymbols(found)
}
