// Package indexer implements the Indexer (C3): parsing source files into
// typed, content-addressed chunks with stable identity.
package indexer

import (
	"path/filepath"
	"strings"

	"github.com/prism-dev/prism/internal/chunk"
)

// ParseResult is the Indexer's parse(text, language) contract.
type ParseResult struct {
	Chunks    []chunk.Chunk
	Functions []string
	Classes   []string
	HasErrors bool
}

var extensionLanguage = map[string]chunk.Language{
	".ts":    chunk.LangTypeScript,
	".tsx":   chunk.LangTypeScript,
	".js":    chunk.LangJavaScript,
	".jsx":   chunk.LangJavaScript,
	".mjs":   chunk.LangJavaScript,
	".py":    chunk.LangPython,
	".rs":    chunk.LangRust,
	".go":    chunk.LangGo,
	".java":  chunk.LangJava,
	".c":     chunk.LangC,
	".h":     chunk.LangC,
	".cpp":   chunk.LangCPP,
	".cc":    chunk.LangCPP,
	".hpp":   chunk.LangCPP,
	".cs":    chunk.LangCSharp,
	".php":   chunk.LangPHP,
	".rb":    chunk.LangRuby,
	".kt":    chunk.LangKotlin,
	".kts":   chunk.LangKotlin,
	".swift": chunk.LangSwift,
	".sh":    chunk.LangShell,
	".bash":  chunk.LangShell,
	".yml":   chunk.LangYAML,
	".yaml":  chunk.LangYAML,
	".json":  chunk.LangJSON,
	".md":    chunk.LangMarkdown,
	".markdown": chunk.LangMarkdown,
}

// DetectLanguage maps a file extension to a Language tag, or LangText
// with ok=false when unrecognized. The index command skips files for
// which ok is false.
func DetectLanguage(path string) (chunk.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionLanguage[ext]
	if !ok {
		return chunk.LangText, false
	}
	return lang, true
}
