// Package pipeline wires components C1–C11 into the single data flow:
// detect intent, embed and search, score, select, compress, analyze
// complexity, and route to a model. It is the one public entry point
// peripheral front ends (cmd/prism, cmd/prism-mcp) call into.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prism-dev/prism/internal/budget"
	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/compressor"
	"github.com/prism-dev/prism/internal/complexity"
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/graphindex"
	"github.com/prism-dev/prism/internal/intent"
	"github.com/prism-dev/prism/internal/router"
	"github.com/prism-dev/prism/internal/scorer"
	"github.com/prism-dev/prism/internal/selector"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// QueryContext is an explicit, typed context bag: everything the Intent
// Detector and Complexity Analyzer may optionally consult, passed
// directly rather than discovered through duck typing.
type QueryContext struct {
	CurrentFile     string
	CurrentLanguage chunk.Language
	ChunkCorpusSize int
	HasHistory      bool
}

// Answer is the pipeline's output: the compressed, budget-respecting
// chunk selection plus the model the front end should call.
type Answer struct {
	QueryID    string // correlation id for logs and feedback, not a chunk id
	Intent     intent.Intent
	Complexity complexity.Result
	Chunks     []chunk.Chunk
	Model      router.Choice
}

// Engine holds the components the pipeline orchestrates. The Vector
// Store, the Budget Tracker (reached via the Router) and the Feedback
// ring buffer are mutable and shared; everything else is stateless
// configuration.
type Engine struct {
	Store      vectorstore.Store
	Embedder   embedding.Provider
	Graph      graphindex.Graph
	Router     *router.Router
	Feedback   *FeedbackStore
	Now        func() int64 // unix ms, injected for testability
	SearchTopK int
}

// NewEngine constructs an Engine. now defaults to the wall clock.
func NewEngine(store vectorstore.Store, embedder embedding.Provider, graph graphindex.Graph, r *router.Router, feedback *FeedbackStore) *Engine {
	return &Engine{
		Store:      store,
		Embedder:   embedder,
		Graph:      graph,
		Router:     r,
		Feedback:   feedback,
		Now:        func() int64 { return time.Now().UnixMilli() },
		SearchTopK: 40,
	}
}

// Answer implements the full retrieval-and-routing data flow for a
// single query.
func (e *Engine) Answer(ctx context.Context, queryText string, qctx QueryContext, avail router.Availability) (Answer, error) {
	it := intent.Detect(queryText, qctx.HasHistory)

	vecs, err := e.Embedder.Embed(ctx, []string{queryText}, embedding.ModeQuery)
	if err != nil {
		return Answer{}, err
	}
	queryVec := vecs[0]

	filters := vectorstore.Filters{}
	if qctx.CurrentLanguage != "" && it.Scope == intent.ScopeCurrentFile {
		filters.Language = qctx.CurrentLanguage
	}

	results, err := e.Store.Search(ctx, queryVec, e.SearchTopK, 0, filters)
	if err != nil {
		return Answer{}, err
	}

	now := e.Now()
	scored := make([]selector.Scored, 0, len(results))
	for _, r := range results {
		q := scorer.Query{
			Embedding:   queryVec,
			Entities:    toScorerEntities(it.Entities),
			CurrentFile: qctx.CurrentFile,
			Now:         now / 1000,
			Usage:       e.usageFor(r.Chunk.ID),
		}
		result := scorer.Score(r.Chunk, q)
		if e.Graph != nil && qctx.CurrentFile != "" {
			result = applyGraphProximity(result, e.Graph, qctx.CurrentFile, r.Chunk.FilePath)
		}
		scored = append(scored, selector.Scored{Chunk: r.Chunk, Relevance: result.Total})
	}

	selected := selector.Select(scored, it.EstimatedBudget, selector.Options{
		MinRelevance:    it.Options.MinRelevance,
		MaxChunks:       it.Options.MaxChunks,
		PreferDiversity: it.Options.PreferDiversity,
	})

	level := compressor.Level(it.Options.CompressionLevel)
	compressed := make([]chunk.Chunk, len(selected))
	for i, c := range selected {
		compressed[i] = compressor.Compress(c, level)
	}

	totalTokens := 0
	for _, c := range compressed {
		totalTokens += c.EstimatedTokens
	}

	complexityResult := complexity.Analyze(queryText, complexity.Context{
		CurrentFile:     qctx.CurrentFile,
		CandidateChunks: qctx.ChunkCorpusSize,
	})

	choice, err := e.Router.Select(ctx, totalTokens, complexityResult.Score, avail)
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		QueryID:    uuid.NewString(),
		Intent:     it,
		Complexity: complexityResult,
		Chunks:     compressed,
		Model:      choice,
	}, nil
}

func (e *Engine) usageFor(chunkID string) map[string]scorer.UsageStats {
	if e.Feedback == nil {
		return nil
	}
	helpful, total := e.Feedback.Stats(chunkID)
	if total == 0 {
		return nil
	}
	return map[string]scorer.UsageStats{chunkID: {Helpful: helpful, Total: total}}
}

func toScorerEntities(entities []intent.Entity) []scorer.QueryEntity {
	out := make([]scorer.QueryEntity, 0, len(entities))
	for _, e := range entities {
		if e.Kind != intent.EntitySymbol && e.Kind != intent.EntityKeyword {
			continue
		}
		out = append(out, scorer.QueryEntity{Kind: string(e.Kind), Value: e.Value})
	}
	return out
}

// applyGraphProximity gives a 0.5-hop boost to the file-proximity feature
// (0.8 − 0.1·0.5 = 0.75) when an explicit import edge connects currentFile
// and candidatePath and no shorter path-distance has already been
// established (same file or same directory, 0.8 and above).
func applyGraphProximity(result scorer.Result, g graphindex.Graph, currentFile, candidatePath string) scorer.Result {
	if result.Breakdown.FileProximity >= 0.8 {
		return result
	}
	deps := g.Dependencies(currentFile, 1)
	dependents := g.Dependents(currentFile, 1)
	for _, d := range deps {
		if d == candidatePath {
			return boostProximity(result, 0.75)
		}
	}
	for _, d := range dependents {
		if d == candidatePath {
			return boostProximity(result, 0.75)
		}
	}
	return result
}

func boostProximity(result scorer.Result, proximity float64) scorer.Result {
	if proximity <= result.Breakdown.FileProximity {
		return result
	}
	delta := proximity - result.Breakdown.FileProximity
	result.Breakdown.FileProximity = proximity
	result.Total += 0.20 * delta
	return result
}
