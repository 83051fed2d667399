package indexer

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// DefaultExcludePatterns mirrors default exclusion set.
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
}

// DefaultMaxFileSize is default max_file_size (1 MB).
const DefaultMaxFileSize = 1 << 20

// Discovery decides which files the Indexer should consider, applying
// exclude globs and the binary/size skip rules.
type Discovery struct {
	excludes    []glob.Glob
	maxFileSize int64
}

// NewDiscovery compiles the given exclude patterns (forward-slash glob
// syntax, '/' separator) plus the defaults.
func NewDiscovery(excludePatterns []string, maxFileSize int64) (*Discovery, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	patterns := append(append([]string{}, DefaultExcludePatterns...), excludePatterns...)
	d := &Discovery{maxFileSize: maxFileSize}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		d.excludes = append(d.excludes, g)
	}
	return d, nil
}

// Excluded reports whether path matches any exclude pattern.
func (d *Discovery) Excluded(path string) bool {
	normalized := normalizeSlashes(path)
	for _, g := range d.excludes {
		if g.Match(normalized) {
			return true
		}
	}
	return false
}

// ShouldSkip reports whether a file should be skipped (excluded, too
// large, or binary), and a human-readable reason for a warning log —
// never an error; skipped files are logged but never fail the operation.
func (d *Discovery) ShouldSkip(path string, info os.FileInfo, sample []byte) (skip bool, reason string) {
	if d.Excluded(path) {
		return true, "excluded by pattern"
	}
	if info != nil && info.Size() > d.maxFileSize {
		return true, "exceeds max_file_size"
	}
	if isBinary(sample) {
		return true, "binary content"
	}
	return false, ""
}

// isBinary uses the conventional NUL-byte heuristic on a content sample.
func isBinary(sample []byte) bool {
	return bytes.IndexByte(sample, 0) != -1
}

func normalizeSlashes(path string) string {
	return filepath.ToSlash(path)
}
