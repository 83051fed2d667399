// Package scorer implements the Scorer (C6): a deterministic, five
// feature weighted relevance score for a chunk against a query.
package scorer

import (
	"math"
	"strings"

	"github.com/prism-dev/prism/internal/chunk"
)

const (
	weightSemantic     = 0.40
	weightSymbolMatch  = 0.25
	weightFileProximity = 0.20
	weightRecency      = 0.10
	weightFrequency    = 0.05

	recencyHalfLifeSeconds = 30 * 24 * 60 * 60
)

// QueryEntity is the subset of an intent.Entity the Scorer's symbol-match
// feature consumes: only symbol and keyword kinds participate.
type QueryEntity struct {
	Kind  string // "symbol" or "keyword"
	Value string
}

// UsageStats is the per-chunk usage history the frequency feature reads.
type UsageStats struct {
	Helpful int
	Total   int
}

// Query bundles everything the Scorer needs beyond the candidate chunk.
type Query struct {
	Embedding   []float32
	Entities    []QueryEntity
	CurrentFile string // empty if absent
	Now         int64  // unix seconds
	Usage       map[string]UsageStats
}

// Breakdown is the per-feature contribution, returned for introspection
// and testing.
type Breakdown struct {
	Semantic      float64
	SymbolMatch   float64
	FileProximity float64
	Recency       float64
	Frequency     float64
}

// Result is the Scorer's output.
type Result struct {
	Total     float64
	Breakdown Breakdown
}

// Score implements score(chunk, query, now) → {total, breakdown}.
func Score(c chunk.Chunk, q Query) Result {
	b := Breakdown{
		Semantic:      semanticScore(c.Embedding, q.Embedding),
		SymbolMatch:   symbolMatchScore(c.Symbols, q.Entities),
		FileProximity: fileProximityScore(c.FilePath, q.CurrentFile),
		Recency:       recencyScore(c.LastModified/1000, q.Now),
		Frequency:     frequencyScore(q.Usage[c.ID]),
	}

	total := weightSemantic*b.Semantic +
		weightSymbolMatch*b.SymbolMatch +
		weightFileProximity*b.FileProximity +
		weightRecency*b.Recency +
		weightFrequency*b.Frequency

	return Result{Total: clamp01(total), Breakdown: b}
}

func semanticScore(chunkVec, queryVec []float32) float64 {
	if len(chunkVec) == 0 || len(queryVec) == 0 || len(chunkVec) != len(queryVec) {
		return 0
	}
	var dot, magA, magB float64
	for i := range chunkVec {
		dot += float64(chunkVec[i]) * float64(queryVec[i])
		magA += float64(chunkVec[i]) * float64(chunkVec[i])
		magB += float64(queryVec[i]) * float64(queryVec[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// symbolMatchScore takes the max over query entities of exact (1.0),
// case-insensitive substring in either direction (0.8), or fuzzy
// Levenshtein similarity (0.6 scaled).
func symbolMatchScore(symbols []string, entities []QueryEntity) float64 {
	if len(symbols) == 0 {
		return 0
	}
	best := 0.0
	for _, e := range entities {
		if e.Kind != "symbol" && e.Kind != "keyword" {
			continue
		}
		for _, sym := range symbols {
			score := matchOne(sym, e.Value)
			if score > best {
				best = score
			}
		}
	}
	return best
}

func matchOne(symbol, entity string) float64 {
	if symbol == entity {
		return 1.0
	}
	lowerSym, lowerEnt := strings.ToLower(symbol), strings.ToLower(entity)
	if strings.Contains(lowerSym, lowerEnt) || strings.Contains(lowerEnt, lowerSym) {
		return 0.8
	}
	maxLen := len(symbol)
	if len(entity) > maxLen {
		maxLen = len(entity)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein(lowerSym, lowerEnt)
	return 0.6 * (1 - float64(dist)/float64(maxLen))
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(minInt(del, ins), sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func fileProximityScore(chunkPath, currentFile string) float64 {
	if currentFile == "" {
		return 0.5
	}
	chunkPath = chunk.NormalizePath(chunkPath)
	currentFile = chunk.NormalizePath(currentFile)
	if chunkPath == currentFile {
		return 1.0
	}
	if chunk.Dir(chunkPath) == chunk.Dir(currentFile) {
		return 0.8
	}
	distance, hasCommonAncestor := chunk.PathDistance(chunkPath, currentFile)
	if !hasCommonAncestor {
		return 0.05
	}
	v := 0.8 - 0.1*float64(distance)
	if v < 0.1 {
		v = 0.1
	}
	return v
}

func recencyScore(lastModified, now int64) float64 {
	if lastModified == 0 {
		return 0.5
	}
	if lastModified > now {
		return 1.0
	}
	ageSeconds := float64(now - lastModified)
	v := math.Pow(0.5, ageSeconds/float64(recencyHalfLifeSeconds))
	if v < 0.1 {
		return 0.1
	}
	return v
}

func frequencyScore(u UsageStats) float64 {
	if u.Total == 0 {
		return 0
	}
	ratio := float64(u.Helpful) / float64(u.Total)
	scale := float64(u.Total) / 10.0
	if scale > 1 {
		scale = 1
	}
	return ratio * scale
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
