package indexer

import "strings"

// DefaultMaxLines is the chunking policy's max_lines default.
const DefaultMaxLines = 50

// lineSpan is a closed [startLine, endLine] range (1-indexed, inclusive)
// with its byte offsets into the original file, used before a span is
// promoted to a chunk.
type lineSpan struct {
	startLine, endLine int
	startByte, endByte int
	text               string
}

// splitIntoBlocks splits the given lines (1-indexed starting at
// firstLine) into contiguous blocks of at most maxLines lines, skipping
// blocks that are empty or whitespace-only.
func splitIntoBlocks(lines []string, firstLine int, byteOffsets []int, maxLines int) []lineSpan {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	var spans []lineSpan
	for start := 0; start < len(lines); start += maxLines {
		end := start + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		block := lines[start:end]
		text := strings.Join(block, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		span := lineSpan{
			startLine: firstLine + start,
			endLine:   firstLine + end - 1,
			text:      text,
		}
		if byteOffsets != nil {
			span.startByte = byteOffsets[start]
			if end < len(byteOffsets) {
				span.endByte = byteOffsets[end]
			} else {
				span.endByte = byteOffsets[len(byteOffsets)-1] + len(lines[len(lines)-1])
			}
		}
		spans = append(spans, span)
	}
	return spans
}

// lineByteOffsets returns, for each line in lines, the byte offset of its
// first character within the original source (lines were split on "\n",
// so offsets simply accumulate line length + 1 for the separator).
func lineByteOffsets(lines []string) []int {
	offsets := make([]int, len(lines))
	acc := 0
	for i, l := range lines {
		offsets[i] = acc
		acc += len(l) + 1
	}
	return offsets
}

// remainingRegions returns the line ranges of source (1-indexed,
// inclusive) that are not covered by any of the given declaration spans,
// preserving file order. Declarations are assumed already sorted and
// non-overlapping (tree-sitter top-level children never overlap).
func remainingRegions(totalLines int, covered []lineRange) []lineRange {
	if totalLines == 0 {
		return nil
	}
	var regions []lineRange
	cursor := 1
	for _, c := range covered {
		if c.start > cursor {
			regions = append(regions, lineRange{start: cursor, end: c.start - 1})
		}
		if c.end+1 > cursor {
			cursor = c.end + 1
		}
	}
	if cursor <= totalLines {
		regions = append(regions, lineRange{start: cursor, end: totalLines})
	}
	return regions
}

type lineRange struct {
	start, end int
}
