package indexer

import (
	"regexp"
	"strings"
)

var markdownHeaderPattern = regexp.MustCompile(`^##\s+`)

// splitMarkdownSections splits markdown content into sections by level-2
// (##) headers, the way the documentation chunker does, so
// that each section can then be fed through splitIntoBlocks for its
// actual chunk boundaries. Returned spans are 1-indexed line ranges.
func splitMarkdownSections(lines []string) []lineRange {
	if len(lines) == 0 {
		return nil
	}
	var sections []lineRange
	start := 1
	for i, line := range lines {
		lineNum := i + 1
		if lineNum > 1 && markdownHeaderPattern.MatchString(line) {
			sections = append(sections, lineRange{start: start, end: lineNum - 1})
			start = lineNum
		}
	}
	sections = append(sections, lineRange{start: start, end: len(lines)})

	// Drop a leading empty section (content that starts exactly on a header).
	var out []lineRange
	for _, s := range sections {
		if s.start > s.end {
			continue
		}
		text := strings.Join(lines[s.start-1:s.end], "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
