// Package selector implements the Chunk Selector (C7): density-guided
// knapsack selection with a high-value overage rule, a diversity pass,
// and a final cap.
package selector

import (
	"math"
	"sort"

	"github.com/prism-dev/prism/internal/chunk"
)

// highValueRelevance is the relevance threshold of the overage rule: the
// rule fires only when the greedy selection holds no chunk at or above it.
const highValueRelevance = 0.8

// overageTolerance caps how far the high-value overage admission may
// push the running total past budget.
const overageTolerance = 0.10

// Scored is a candidate chunk with its computed relevance.
type Scored struct {
	Chunk     chunk.Chunk
	Relevance float64
}

// Options mirrors intent.Options, the subset the Selector consumes.
type Options struct {
	MinRelevance    float64
	MaxChunks       int
	PreferDiversity bool
}

// Select implements select(scored, budget, options) → [CodeChunk].
func Select(scored []Scored, budget int, options Options) []chunk.Chunk {
	candidates := filterByRelevance(scored, options.MinRelevance)
	if len(candidates) == 0 || budget <= 0 {
		return nil
	}

	ordered := sortByDensityDesc(candidates)
	selected, remaining := greedyFill(ordered, budget)

	if !hasHighValue(selected) {
		selected, remaining = admitHighValueOverage(selected, remaining, budget)
	}

	if len(selected) == 0 {
		selected, remaining = admitBestEffort(selected, remaining)
	}

	if options.PreferDiversity {
		selected = diversityPass(selected, remaining, options.MinRelevance)
	}

	selected = capByRelevance(selected, options.MaxChunks)

	return toSortedChunks(selected)
}

func filterByRelevance(scored []Scored, minRelevance float64) []Scored {
	out := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Relevance >= minRelevance {
			out = append(out, s)
		}
	}
	return out
}

func density(s Scored) float64 {
	tokens := s.Chunk.EstimatedTokens
	if tokens < 1 {
		tokens = 1
	}
	return s.Relevance / float64(tokens)
}

func sortByDensityDesc(candidates []Scored) []Scored {
	ordered := make([]Scored, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := density(ordered[i]), density(ordered[j])
		if di != dj {
			return di > dj
		}
		return ordered[i].Chunk.ID < ordered[j].Chunk.ID
	})
	return ordered
}

// greedyFill takes chunks in density order while the running token total
// stays within budget, returning what was selected and what was left.
func greedyFill(ordered []Scored, budget int) (selected, remaining []Scored) {
	total := 0
	for _, s := range ordered {
		if total+s.Chunk.EstimatedTokens <= budget {
			selected = append(selected, s)
			total += s.Chunk.EstimatedTokens
			continue
		}
		remaining = append(remaining, s)
	}
	return selected, remaining
}

func hasHighValue(selected []Scored) bool {
	for _, s := range selected {
		if s.Relevance >= highValueRelevance {
			return true
		}
	}
	return false
}

// admitHighValueOverage admits the highest-relevance remaining chunk even
// if it exceeds budget, provided it does so by no more than 10%.
func admitHighValueOverage(selected, remaining []Scored, budget int) ([]Scored, []Scored) {
	if len(remaining) == 0 {
		return selected, remaining
	}
	best := 0
	for i, s := range remaining {
		if s.Relevance > remaining[best].Relevance {
			best = i
		}
	}
	total := sumTokens(selected)
	limit := int(math.Floor(float64(budget) * (1 + overageTolerance)))
	if total+remaining[best].Chunk.EstimatedTokens > limit {
		return selected, remaining
	}
	candidate := remaining[best]
	selected = append(selected, candidate)
	remaining = append(remaining[:best:best], remaining[best+1:]...)
	return selected, remaining
}

// admitBestEffort is the last-resort guarantee behind Select's promise
// that selection is only ever empty for three reasons: no candidates,
// budget <= 0, or everything filtered by relevance. If every surviving
// candidate was too large for greedy fill and too large even for the
// overage tolerance, admit the single highest-relevance one regardless
// of size rather than return nothing for a non-empty, affordable budget.
func admitBestEffort(selected, remaining []Scored) ([]Scored, []Scored) {
	if len(remaining) == 0 {
		return selected, remaining
	}
	best := 0
	for i, s := range remaining {
		if s.Relevance > remaining[best].Relevance {
			best = i
		}
	}
	selected = append(selected, remaining[best])
	remaining = append(remaining[:best:best], remaining[best+1:]...)
	return selected, remaining
}

func sumTokens(scored []Scored) int {
	total := 0
	for _, s := range scored {
		total += s.Chunk.EstimatedTokens
	}
	return total
}

// diversityPass rebalances file representation: while any file
// contributes more than ceil(N/F) chunks (F = distinct files across
// selected+remaining candidates), swap its lowest-density instance for
// the highest-density unselected chunk from any other file.
func diversityPass(selected, remaining []Scored, minRelevance float64) []Scored {
	for {
		n := len(selected)
		if n == 0 {
			return selected
		}
		files := distinctFiles(append(append([]Scored{}, selected...), remaining...))
		if len(files) <= 1 {
			return selected
		}
		cap := int(math.Ceil(float64(n) / float64(len(files))))

		overFile, overIdx := mostOverrepresented(selected, cap)
		if overFile == "" {
			return selected
		}

		underIdx := bestUnderrepresentedCandidate(selected, remaining, overFile, minRelevance)
		if underIdx < 0 {
			return selected
		}

		selected[overIdx] = remaining[underIdx]
		remaining = append(remaining[:underIdx:underIdx], remaining[underIdx+1:]...)
	}
}

func distinctFiles(all []Scored) map[string]struct{} {
	files := make(map[string]struct{})
	for _, s := range all {
		files[chunk.NormalizePath(s.Chunk.FilePath)] = struct{}{}
	}
	return files
}

// mostOverrepresented returns the file path exceeding cap and the index
// within selected of its lowest-density instance, or ("", -1) if none.
func mostOverrepresented(selected []Scored, cap int) (string, int) {
	counts := make(map[string]int)
	for _, s := range selected {
		counts[chunk.NormalizePath(s.Chunk.FilePath)]++
	}
	for file, count := range counts {
		if count <= cap {
			continue
		}
		worstIdx, worstDensity := -1, math.MaxFloat64
		for i, s := range selected {
			if chunk.NormalizePath(s.Chunk.FilePath) != file {
				continue
			}
			d := density(s)
			if d < worstDensity {
				worstDensity = d
				worstIdx = i
			}
		}
		if worstIdx >= 0 {
			return file, worstIdx
		}
	}
	return "", -1
}

// bestUnderrepresentedCandidate finds the highest-density remaining
// candidate whose file isn't overFile and whose relevance clears the
// floor, to swap into the selection.
func bestUnderrepresentedCandidate(selected, remaining []Scored, overFile string, minRelevance float64) int {
	best, bestDensity := -1, -1.0
	for i, s := range remaining {
		if chunk.NormalizePath(s.Chunk.FilePath) == overFile {
			continue
		}
		if s.Relevance < minRelevance {
			continue
		}
		d := density(s)
		if d > bestDensity {
			bestDensity = d
			best = i
		}
	}
	return best
}

func capByRelevance(selected []Scored, maxChunks int) []Scored {
	if maxChunks <= 0 || len(selected) <= maxChunks {
		return selected
	}
	ordered := make([]Scored, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Relevance != ordered[j].Relevance {
			return ordered[i].Relevance > ordered[j].Relevance
		}
		return ordered[i].Chunk.ID < ordered[j].Chunk.ID
	})
	return ordered[:maxChunks]
}

func toSortedChunks(selected []Scored) []chunk.Chunk {
	ordered := make([]Scored, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Relevance != ordered[j].Relevance {
			return ordered[i].Relevance > ordered[j].Relevance
		}
		return ordered[i].Chunk.ID < ordered[j].Chunk.ID
	})
	out := make([]chunk.Chunk, len(ordered))
	for i, s := range ordered {
		out[i] = s.Chunk
	}
	return out
}
