package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prism-dev/prism/internal/chunk"
)

// Test Plan:
// - worked example: three candidates, greedy density fill picks B then C, skips A
// - relevance floor filters low-scoring candidates before anything else runs
// - high-value overage admits a high-relevance chunk slightly over budget
// - without a high-relevance selection, overage never exceeds the 10% tolerance
// - diversity pass swaps an over-represented file's weakest pick for another file's chunk
// - max_chunks caps the final set, keeping the highest-relevance members
// - output is sorted by relevance descending with a stable ID tie-break

func mk(id, file string, relevance float64, tokens int) Scored {
	return Scored{
		Chunk: chunk.Chunk{ID: id, FilePath: file, EstimatedTokens: tokens},
		Relevance: relevance,
	}
}

func TestSelect_WorkedExample(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("A", "a.go", 0.9, 200),
		mk("B", "b.go", 0.85, 50),
		mk("C", "c.go", 0.4, 40),
	}
	out := Select(candidates, 100, Options{MinRelevance: 0, MaxChunks: 10})

	ids := idsOf(out)
	assert.Equal(t, []string{"B", "C"}, ids)
}

func TestSelect_MinRelevanceFilters(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("A", "a.go", 0.9, 10),
		mk("B", "b.go", 0.2, 10),
	}
	out := Select(candidates, 1000, Options{MinRelevance: 0.5, MaxChunks: 10})
	assert.Equal(t, []string{"A"}, idsOf(out))
}

func TestSelect_HighValueOverageAdmitted(t *testing.T) {
	t.Parallel()
	// 100 low-relevance fillers exactly saturate the budget by density
	// order; the high-relevance chunk sorts last (its large size drags
	// its density below every filler's) but still clears the 10% overage
	// tolerance, so it must be admitted on top.
	var candidates []Scored
	for i := 0; i < 100; i++ {
		candidates = append(candidates, mk(string(rune('a'+i%26))+string(rune('0'+i/26)), "filler.go", 0.3, 100))
	}
	candidates = append(candidates, mk("premium", "b.go", 0.85, 900))

	out := Select(candidates, 10000, Options{MinRelevance: 0, MaxChunks: 200})

	ids := idsOf(out)
	assert.Contains(t, ids, "premium", "high-relevance chunk admitted within the 10% overage tolerance")
}

func TestSelect_OverageWithoutHighValueStaysWithinTolerance(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("fits", "a.go", 0.6, 90),
		mk("excess", "b.go", 0.55, 50),
	}
	out := Select(candidates, 100, Options{MinRelevance: 0, MaxChunks: 10})
	total := 0
	for _, c := range out {
		total += c.EstimatedTokens
	}
	assert.LessOrEqual(t, total, 110)
}

func TestSelect_DiversityPassSpreadsAcrossFiles(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("a1", "a.go", 0.9, 10),
		mk("a2", "a.go", 0.85, 10),
		mk("a3", "a.go", 0.8, 10),
		mk("b1", "b.go", 0.6, 10),
	}
	// Budget only fits three chunks, so the greedy density fill picks
	// all of a.go and leaves b.go out; diversity should swap a.go's
	// weakest pick for it.
	out := Select(candidates, 30, Options{MinRelevance: 0, MaxChunks: 10, PreferDiversity: true})

	files := make(map[string]int)
	for _, c := range out {
		files[chunk.NormalizePath(c.FilePath)]++
	}
	assert.Contains(t, files, "b.go", "diversity pass should pull in the under-represented file")
}

func TestSelect_MaxChunksCapsToHighestRelevance(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("a", "a.go", 0.9, 10),
		mk("b", "b.go", 0.8, 10),
		mk("c", "c.go", 0.7, 10),
	}
	out := Select(candidates, 1000, Options{MinRelevance: 0, MaxChunks: 2})
	assert.Len(t, out, 2)
	assert.Equal(t, []string{"a", "b"}, idsOf(out))
}

func TestSelect_SortedByRelevanceDescendingStableID(t *testing.T) {
	t.Parallel()
	candidates := []Scored{
		mk("z", "a.go", 0.7, 10),
		mk("y", "b.go", 0.7, 10),
		mk("x", "c.go", 0.9, 10),
	}
	out := Select(candidates, 1000, Options{MinRelevance: 0, MaxChunks: 10})
	assert.Equal(t, []string{"x", "y", "z"}, idsOf(out))
}

func TestSelect_SingleOversizedCandidateStillAdmitted(t *testing.T) {
	t.Parallel()
	// The only candidate clears the relevance floor but is far larger
	// than the budget, even with the 10% overage tolerance applied.
	// Selection must still return it rather than come back empty.
	candidates := []Scored{mk("huge", "a.go", 0.6, 10_000)}
	out := Select(candidates, 10, Options{MinRelevance: 0, MaxChunks: 10})
	assert.Equal(t, []string{"huge"}, idsOf(out))
}

func TestSelect_EmptyWhenNothingClearsFloor(t *testing.T) {
	t.Parallel()
	candidates := []Scored{mk("a", "a.go", 0.1, 10)}
	out := Select(candidates, 1000, Options{MinRelevance: 0.5, MaxChunks: 10})
	assert.Empty(t, out)
}

func idsOf(chunks []chunk.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}
