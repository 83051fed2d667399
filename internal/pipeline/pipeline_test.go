package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-dev/prism/internal/budget"
	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/graphindex"
	"github.com/prism-dev/prism/internal/indexer"
	"github.com/prism-dev/prism/internal/router"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// Test Plan:
// - scenario 1: a query naming `formatDate` against an indexed repo surfaces the
//   containing chunk and routes to a cheap tier
// - the selection never exceeds the intent's max_chunks cap

const dateTS = `export function formatDate(d: Date): string {
	return d.toISOString();
}

export function parseDate(s: string): Date {
	return new Date(s);
}
`

func buildEngine(t *testing.T) (*Engine, vectorstore.Store) {
	t.Helper()
	ctx := context.Background()

	store, err := vectorstore.New(100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	embedder := embedding.NewMockProvider(32)
	ix := indexer.New(0)
	chunks := ix.IndexFile("src/utils/date.ts", []byte(dateTS), chunk.LangTypeScript, 1000)
	require.NotEmpty(t, chunks)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := embedder.Embed(ctx, texts, embedding.ModePassage)
	require.NoError(t, err)
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}
	require.NoError(t, store.Upsert(ctx, chunks))

	graph := graphindex.New()
	require.NoError(t, graph.Build(chunks))

	models := []router.ModelSpec{
		{Name: "local-7b", Provider: router.ProviderLocal, MaxTokens: 32_000, RecommendedBand: router.ComplexityBand{Min: 0, Max: 0.6}},
		{Name: "haiku", Provider: router.ProviderCheapPaid, MaxTokens: 100_000, PriceInPerMillion: 0.25, PriceOutPerMillion: 1.25, RecommendedBand: router.ComplexityBand{Min: 0, Max: 0.6}},
		{Name: "sonnet", Provider: router.ProviderBalanced, MaxTokens: 200_000, PriceInPerMillion: 3, PriceOutPerMillion: 15, RecommendedBand: router.ComplexityBand{Min: 0.4, Max: 0.85}},
		{Name: "opus", Provider: router.ProviderPremium, MaxTokens: 200_000, PriceInPerMillion: 15, PriceOutPerMillion: 75, RecommendedBand: router.ComplexityBand{Min: 0.7, Max: 1}},
	}
	tracker := budget.New(budget.NewMemoryStore(), map[string]float64{}, map[string]budget.CostTable{})
	r := router.New(models, tracker, map[router.Provider]string{
		router.ProviderLocal:     "local-7b",
		router.ProviderCheapPaid: "haiku",
		router.ProviderBalanced:  "sonnet",
		router.ProviderPremium:   "opus",
	})

	engine := NewEngine(store, embedder, graph, r, NewFeedbackStore(100))
	return engine, store
}

func TestEngine_Answer_Scenario1(t *testing.T) {
	t.Parallel()
	engine, _ := buildEngine(t)
	engine.Now = func() int64 { return 1000 }

	answer, err := engine.Answer(context.Background(), "Explain the `formatDate` function", QueryContext{CurrentFile: "src/utils/date.ts"}, router.StaticAvailability{router.ProviderLocal: true})
	require.NoError(t, err)

	assert.NotEmpty(t, answer.Chunks)
	found := false
	for _, c := range answer.Chunks {
		if c.Name == "formatDate" {
			found = true
		}
	}
	assert.True(t, found, "formatDate chunk must be present in the selection")
	assert.NotEmpty(t, answer.Model.Model)
	assert.Equal(t, router.ProviderLocal, answer.Model.Provider, "small, simple request routes to the local tier")
}

func TestEngine_Answer_RespectsMaxChunks(t *testing.T) {
	t.Parallel()
	engine, _ := buildEngine(t)

	answer, err := engine.Answer(context.Background(), "search for date helpers across the project", QueryContext{}, router.StaticAvailability{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(answer.Chunks), answer.Intent.Options.MaxChunks)
}
