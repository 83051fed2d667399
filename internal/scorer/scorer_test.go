package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prism-dev/prism/internal/chunk"
)

// Test Plan:
// - orthogonal unit vectors give a zero semantic component (scenario 6)
// - symbol match: exact, substring, and fuzzy tiers
// - file proximity: same path, same dir, distance falloff, no common ancestor, neutral
// - recency: neutral when absent, 1.0 when future-dated, half-life decay, floor at 0.1
// - frequency: zero with no history, scaled by volume
// - Score is deterministic and reproduces identical output across calls

func TestScore_OrthogonalEmbeddings(t *testing.T) {
	t.Parallel()
	dims := 384
	a := make([]float32, dims)
	b := make([]float32, dims)
	a[0] = 1
	b[1] = 1

	c := chunk.Chunk{Embedding: a}
	q := Query{Embedding: b, Now: 1000}
	result := Score(c, q)
	assert.Equal(t, 0.0, result.Breakdown.Semantic)
}

func TestSymbolMatch_Tiers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, symbolMatchScore([]string{"ParseConfig"}, []QueryEntity{{Kind: "symbol", Value: "ParseConfig"}}))
	assert.Equal(t, 0.8, symbolMatchScore([]string{"ParseConfigFile"}, []QueryEntity{{Kind: "symbol", Value: "ParseConfig"}}))
	assert.Equal(t, 0.0, symbolMatchScore([]string{"Unrelated"}, nil))

	fuzzy := symbolMatchScore([]string{"Prase"}, []QueryEntity{{Kind: "symbol", Value: "Parse"}})
	assert.Greater(t, fuzzy, 0.0)
	assert.Less(t, fuzzy, 0.6)
}

func TestSymbolMatch_OnlySymbolAndKeywordEntitiesParticipate(t *testing.T) {
	t.Parallel()
	score := symbolMatchScore([]string{"ParseConfig"}, []QueryEntity{{Kind: "file", Value: "ParseConfig"}})
	assert.Equal(t, 0.0, score)
}

func TestFileProximity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, fileProximityScore("src/a.go", "src/a.go"))
	assert.Equal(t, 0.8, fileProximityScore("src/a.go", "src/b.go"))
	assert.Equal(t, 0.5, fileProximityScore("src/a.go", ""))

	far := fileProximityScore("src/pkg/deep/a.go", "src/other/b.go")
	assert.Greater(t, far, 0.0)
	assert.Less(t, far, 0.8)

	noAncestor := fileProximityScore("vendor/lib/x.go", "cmd/app/main.go")
	assert.Equal(t, 0.05, noAncestor)
}

func TestRecency(t *testing.T) {
	t.Parallel()
	now := int64(1_700_000_000)
	assert.Equal(t, 0.5, recencyScore(0, now))
	assert.Equal(t, 1.0, recencyScore(now+1000, now))

	halfLifeAgo := now - recencyHalfLifeSeconds
	assert.InDelta(t, 0.5, recencyScore(halfLifeAgo, now), 1e-9)

	veryOld := now - recencyHalfLifeSeconds*20
	assert.Equal(t, 0.1, recencyScore(veryOld, now))
}

func TestFrequency(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, frequencyScore(UsageStats{}))
	assert.InDelta(t, 0.5, frequencyScore(UsageStats{Helpful: 10, Total: 20}), 1e-9)
	assert.InDelta(t, 0.8, frequencyScore(UsageStats{Helpful: 8, Total: 10}), 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()
	c := chunk.Chunk{ID: "x", FilePath: "a.go", Symbols: []string{"Foo"}, Embedding: []float32{1, 0}, LastModified: 100}
	q := Query{Embedding: []float32{1, 0}, Entities: []QueryEntity{{Kind: "symbol", Value: "Foo"}}, CurrentFile: "a.go", Now: 200}

	first := Score(c, q)
	second := Score(c, q)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Total, 0.0)
	assert.LessOrEqual(t, first.Total, 1.0)
}
