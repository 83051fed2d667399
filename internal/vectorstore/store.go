// Package vectorstore implements the Vector Store (C4): chunk persistence
// keyed by content-addressed id, cosine top-k search with metadata
// filters, and tombstone-based logical delete.
package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gobwas/glob"
	"github.com/maypok86/otter"
	"github.com/philippgille/chromem-go"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/prismerr"
)

// Filters is the conjunctive metadata filter set accepted by Search.
type Filters struct {
	FilePathGlob   string
	Language       chunk.Language
	PathPrefix     string
	CreatedAfter   int64
	CreatedBefore  int64
}

func (f Filters) empty() bool {
	return f.FilePathGlob == "" && f.Language == "" && f.PathPrefix == "" &&
		f.CreatedAfter == 0 && f.CreatedBefore == 0
}

func (f Filters) matches(c chunk.Chunk) bool {
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.PathPrefix != "" && !strings.HasPrefix(c.FilePath, f.PathPrefix) {
		return false
	}
	if f.CreatedAfter != 0 && c.LastModified < f.CreatedAfter {
		return false
	}
	if f.CreatedBefore != 0 && c.LastModified > f.CreatedBefore {
		return false
	}
	if f.FilePathGlob != "" {
		g, err := glob.Compile(f.FilePathGlob, '/')
		if err != nil || !g.Match(chunk.NormalizePath(c.FilePath)) {
			return false
		}
	}
	return true
}

// ScoredChunk pairs a chunk with its similarity score for a search result.
type ScoredChunk struct {
	Chunk chunk.Chunk
	Score float64
}

// Stats summarizes the store's contents.
type Stats struct {
	ChunkCount  int
	ByLanguage  map[string]int
	LastUpdated int64
}

// resultOverfetch is the over-fetch multiplier used ahead of post-filtering.
const resultOverfetch = 2

// Store is the Vector Store contract. Reads are concurrent; writes
// serialize with reads.
type Store interface {
	Upsert(ctx context.Context, chunks []chunk.Chunk) error
	Delete(ctx context.Context, ids []string) error
	Get(ctx context.Context, id string) (chunk.Chunk, bool, error)
	GetBatch(ctx context.Context, ids []string) ([]chunk.Chunk, error)
	Search(ctx context.Context, queryVec []float32, topK int, minScore float64, filters Filters) ([]ScoredChunk, error)
	Stats(ctx context.Context) (Stats, error)
	// ConfirmEntity reports whether term appears in any indexed chunk's
	// content. The chromem store answers from its auxiliary bleve keyword
	// index; the Postgres store runs an ILIKE scan over live chunks. No
	// other package in this repository calls it.
	ConfirmEntity(term string) (bool, error)
	Close() error
}

type record struct {
	chunk   chunk.Chunk
	deleted bool
}

// chromemStore is the primary Store implementation: chromem-go holds the
// embedding index, a plain map holds full chunk records (source of truth
// for Get/Stats/tombstones), and an otter cache fronts point lookups.
type chromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	records    map[string]*record
	dimensions int
	keyword    bleve.Index
	cache      otter.Cache[string, chunk.Chunk]
	lastUpdate int64
}

// New returns an empty Store backed by chromem-go, with an in-memory
// bleve keyword index for entity confirmation and a bounded otter cache
// in front of point lookups.
func New(cacheCapacity int) (Store, error) {
	if cacheCapacity <= 0 {
		cacheCapacity = 10_000
	}
	cache, err := otter.MustBuilder[string, chunk.Chunk](cacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("vectorstore: build cache: %w", err)
	}

	keyword, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("vectorstore: build keyword index: %w", err)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("prism", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: create collection: %w", err)
	}

	return &chromemStore{
		db:         db,
		collection: collection,
		records:    make(map[string]*record),
		keyword:    keyword,
		cache:      cache,
	}, nil
}

type keywordDoc struct {
	Content string `json:"content"`
}

func (s *chromemStore) Upsert(ctx context.Context, chunks []chunk.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return prismerr.Validation("missing_embedding", fmt.Errorf("chunk %s has no embedding", c.ID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if s.dimensions == 0 {
			s.dimensions = len(c.Embedding)
		} else if len(c.Embedding) != s.dimensions {
			return prismerr.Validation("embedding_dimension_mismatch", fmt.Errorf("chunk %s embedding dimension %d does not match store dimension %d", c.ID, len(c.Embedding), s.dimensions))
		}

		doc := chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Metadata:  map[string]string{"language": string(c.Language)},
		}
		_ = s.collection.Delete(ctx, nil, nil, c.ID)
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return prismerr.Storage("add_chunk", fmt.Errorf("chunk %s: %w", c.ID, err))
		}

		if err := s.keyword.Index(c.ID, keywordDoc{Content: c.Content}); err != nil {
			return prismerr.Storage("index_keyword_doc", fmt.Errorf("chunk %s: %w", c.ID, err))
		}

		s.records[c.ID] = &record{chunk: c}
		s.cache.Delete(c.ID)
	}
	s.lastUpdate = nowFunc()

	return nil
}

func (s *chromemStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			rec.deleted = true
		}
		s.cache.Delete(id)
	}
	s.lastUpdate = nowFunc()
	return nil
}

func (s *chromemStore) Get(ctx context.Context, id string) (chunk.Chunk, bool, error) {
	if c, ok := s.cache.Get(id); ok {
		return c, true, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.deleted {
		return chunk.Chunk{}, false, nil
	}
	s.cache.Set(id, rec.chunk)
	return rec.chunk, true, nil
}

func (s *chromemStore) GetBatch(ctx context.Context, ids []string) ([]chunk.Chunk, error) {
	out := make([]chunk.Chunk, 0, len(ids))
	for _, id := range ids {
		c, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *chromemStore) Search(ctx context.Context, queryVec []float32, topK int, minScore float64, filters Filters) ([]ScoredChunk, error) {
	s.mu.RLock()
	dimensions := s.dimensions
	s.mu.RUnlock()

	if dimensions != 0 && len(queryVec) != dimensions {
		return nil, prismerr.Validation("query_dimension_mismatch", fmt.Errorf("query vector dimension %d does not match store dimension %d", len(queryVec), dimensions))
	}
	if topK <= 0 {
		topK = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	overfetch := topK * resultOverfetch
	if overfetch > len(s.records) {
		overfetch = len(s.records)
	}
	if overfetch <= 0 {
		return []ScoredChunk{}, nil
	}

	docs, err := s.collection.QueryEmbedding(ctx, queryVec, overfetch, nil, nil)
	if err != nil {
		return nil, prismerr.Storage("vector_search", err)
	}

	scored := make([]ScoredChunk, 0, len(docs))
	for _, doc := range docs {
		rec, ok := s.records[doc.ID]
		if !ok || rec.deleted {
			continue
		}
		if !filters.empty() && !filters.matches(rec.chunk) {
			continue
		}
		score := clampScore(cosine(queryVec, rec.chunk.Embedding))
		if score < minScore {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: rec.chunk, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *chromemStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLanguage := make(map[string]int)
	count := 0
	for _, rec := range s.records {
		if rec.deleted {
			continue
		}
		count++
		byLanguage[string(rec.chunk.Language)]++
	}

	return Stats{ChunkCount: count, ByLanguage: byLanguage, LastUpdated: s.lastUpdate}, nil
}

func (s *chromemStore) ConfirmEntity(term string) (bool, error) {
	query := bleve.NewMatchQuery(term)
	query.SetField("content")
	req := bleve.NewSearchRequest(query)
	req.Size = 1

	result, err := s.keyword.Search(req)
	if err != nil {
		return false, prismerr.Storage("keyword_search", err)
	}
	return result.Total > 0, nil
}

func (s *chromemStore) Close() error {
	return s.keyword.Close()
}

// cosine computes the cosine similarity of two vectors. Because chunk
// embeddings are unit-norm, this reduces to a dot product — the
// explicit normalization in the denominator stays only to tolerate a
// query vector an Embedding Provider hasn't normalized.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var nowFunc = func() int64 { return time.Now().Unix() }
