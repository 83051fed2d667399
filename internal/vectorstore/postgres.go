package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/prismerr"
)

// postgresStore is the Postgres-backed Store implementation for
// deployments that already run Postgres and would rather not carry an
// in-process chromem-go index (table B, grounded on
// fbrzx/airplane-chat's internal/vectorstore/postgres.go). It implements
// the same Store contract as chromemStore; tombstones remain a boolean
// `deleted` column per Open Question (c) rather than a hard delete.
type postgresStore struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewPostgresStore connects to Postgres, ensures the pgvector schema
// exists, and returns a Store. dimensions fixes the embedding column
// width; all upserted chunks must embed at that dimensionality.
func NewPostgresStore(ctx context.Context, dsn string, dimensions int) (Store, error) {
	if dimensions <= 0 {
		return nil, prismerr.Validation("invalid_dimensions", fmt.Errorf("dimensions must be positive"))
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, prismerr.Storage("postgres_connect", err)
	}

	s := &postgresStore{pool: pool, dimensions: dimensions}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *postgresStore) ensureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS prism_chunks (
	id               TEXT PRIMARY KEY,
	file_path        TEXT NOT NULL,
	language         TEXT NOT NULL,
	kind             TEXT NOT NULL,
	name             TEXT NOT NULL,
	content          TEXT NOT NULL,
	start_line       INT NOT NULL,
	end_line         INT NOT NULL,
	symbols          JSONB NOT NULL DEFAULT '[]',
	imports          JSONB NOT NULL DEFAULT '[]',
	last_modified    BIGINT NOT NULL,
	estimated_tokens INT NOT NULL,
	embedding        vector(%d) NOT NULL,
	deleted          BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS prism_chunks_file_path_idx ON prism_chunks (file_path);
CREATE INDEX IF NOT EXISTS prism_chunks_language_idx ON prism_chunks (language);
`, s.dimensions)

	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return prismerr.Storage("postgres_schema", err)
	}
	return nil
}

func (s *postgresStore) Upsert(ctx context.Context, chunks []chunk.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return prismerr.Validation("missing_embedding", fmt.Errorf("chunk %s has no embedding", c.ID))
		}
		if len(c.Embedding) != s.dimensions {
			return prismerr.Validation("embedding_dimension_mismatch", fmt.Errorf("chunk %s embedding dimension %d does not match store dimension %d", c.ID, len(c.Embedding), s.dimensions))
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return prismerr.Storage("postgres_begin", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		symbols, _ := json.Marshal(c.Symbols)
		imports, _ := json.Marshal(c.Imports)
		_, err := tx.Exec(ctx, `
INSERT INTO prism_chunks (id, file_path, language, kind, name, content, start_line, end_line, symbols, imports, last_modified, estimated_tokens, embedding, deleted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, FALSE)
ON CONFLICT (id) DO UPDATE SET
	file_path = EXCLUDED.file_path, language = EXCLUDED.language, kind = EXCLUDED.kind,
	name = EXCLUDED.name, content = EXCLUDED.content, start_line = EXCLUDED.start_line,
	end_line = EXCLUDED.end_line, symbols = EXCLUDED.symbols, imports = EXCLUDED.imports,
	last_modified = EXCLUDED.last_modified, estimated_tokens = EXCLUDED.estimated_tokens,
	embedding = EXCLUDED.embedding, deleted = FALSE`,
			c.ID, chunk.NormalizePath(c.FilePath), string(c.Language), string(c.Kind), c.Name, c.Content,
			c.StartLine, c.EndLine, symbols, imports, c.LastModified, c.EstimatedTokens, pgvector.NewVector(c.Embedding))
		if err != nil {
			return prismerr.Storage("postgres_upsert", fmt.Errorf("chunk %s: %w", c.ID, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return prismerr.Storage("postgres_commit", err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, ids []string) error {
	_, err := s.pool.Exec(ctx, `UPDATE prism_chunks SET deleted = TRUE WHERE id = ANY($1)`, ids)
	if err != nil {
		return prismerr.Storage("postgres_delete", err)
	}
	return nil
}

func (s *postgresStore) Get(ctx context.Context, id string) (chunk.Chunk, bool, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, file_path, language, kind, name, content, start_line, end_line, symbols, imports, last_modified, estimated_tokens, embedding
FROM prism_chunks WHERE id = $1 AND deleted = FALSE`, id)

	c, err := scanChunk(row)
	if err == pgx.ErrNoRows {
		return chunk.Chunk{}, false, nil
	}
	if err != nil {
		return chunk.Chunk{}, false, prismerr.Storage("postgres_get", err)
	}
	return c, true, nil
}

func (s *postgresStore) GetBatch(ctx context.Context, ids []string) ([]chunk.Chunk, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, file_path, language, kind, name, content, start_line, end_line, symbols, imports, last_modified, estimated_tokens, embedding
FROM prism_chunks WHERE id = ANY($1) AND deleted = FALSE`, ids)
	if err != nil {
		return nil, prismerr.Storage("postgres_get_batch", err)
	}
	defer rows.Close()

	var out []chunk.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, prismerr.Storage("postgres_scan", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *postgresStore) Search(ctx context.Context, queryVec []float32, topK int, minScore float64, filters Filters) ([]ScoredChunk, error) {
	if len(queryVec) != s.dimensions {
		return nil, prismerr.Validation("query_dimension_mismatch", fmt.Errorf("query vector dimension %d does not match store dimension %d", len(queryVec), s.dimensions))
	}
	if topK <= 0 {
		topK = 10
	}

	where := "deleted = FALSE"
	args := []any{pgvector.NewVector(queryVec)}
	if filters.Language != "" {
		args = append(args, string(filters.Language))
		where += fmt.Sprintf(" AND language = $%d", len(args))
	}
	if filters.PathPrefix != "" {
		args = append(args, filters.PathPrefix+"%")
		where += fmt.Sprintf(" AND file_path LIKE $%d", len(args))
	}
	args = append(args, topK)

	query := fmt.Sprintf(`
SELECT id, file_path, language, kind, name, content, start_line, end_line, symbols, imports, last_modified, estimated_tokens, embedding,
       1 - (embedding <=> $1) AS score
FROM prism_chunks
WHERE %s
ORDER BY embedding <=> $1
LIMIT $%d`, where, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, prismerr.Storage("postgres_search", err)
	}
	defer rows.Close()

	var out []ScoredChunk
	for rows.Next() {
		var score float64
		c, err := scanChunkWithScore(rows, &score)
		if err != nil {
			return nil, prismerr.Storage("postgres_scan", err)
		}
		if score < minScore {
			continue
		}
		if !filters.empty() && !filters.matches(c) {
			continue
		}
		out = append(out, ScoredChunk{Chunk: c, Score: clampScore(score)})
	}
	return out, rows.Err()
}

func (s *postgresStore) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.pool.Query(ctx, `SELECT language, COUNT(*) FROM prism_chunks WHERE deleted = FALSE GROUP BY language`)
	if err != nil {
		return Stats{}, prismerr.Storage("postgres_stats", err)
	}
	defer rows.Close()

	byLanguage := make(map[string]int)
	total := 0
	for rows.Next() {
		var lang string
		var count int
		if err := rows.Scan(&lang, &count); err != nil {
			return Stats{}, prismerr.Storage("postgres_stats_scan", err)
		}
		byLanguage[lang] = count
		total += count
	}
	return Stats{ChunkCount: total, ByLanguage: byLanguage, LastUpdated: nowFunc()}, rows.Err()
}

func (s *postgresStore) ConfirmEntity(term string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM prism_chunks WHERE deleted = FALSE AND content ILIKE '%' || $1 || '%' LIMIT 1)`, term).Scan(&exists)
	if err != nil {
		return false, prismerr.Storage("postgres_confirm_entity", err)
	}
	return exists, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (chunk.Chunk, error) {
	var c chunk.Chunk
	var lang, kind string
	var symbols, imports []byte
	var vec pgvector.Vector
	err := row.Scan(&c.ID, &c.FilePath, &lang, &kind, &c.Name, &c.Content, &c.StartLine, &c.EndLine, &symbols, &imports, &c.LastModified, &c.EstimatedTokens, &vec)
	if err != nil {
		return chunk.Chunk{}, err
	}
	c.Language = chunk.Language(lang)
	c.Kind = chunk.Kind(kind)
	_ = json.Unmarshal(symbols, &c.Symbols)
	_ = json.Unmarshal(imports, &c.Imports)
	c.Embedding = vec.Slice()
	return c, nil
}

func scanChunkWithScore(row rowScanner, score *float64) (chunk.Chunk, error) {
	var c chunk.Chunk
	var lang, kind string
	var symbols, imports []byte
	var vec pgvector.Vector
	err := row.Scan(&c.ID, &c.FilePath, &lang, &kind, &c.Name, &c.Content, &c.StartLine, &c.EndLine, &symbols, &imports, &c.LastModified, &c.EstimatedTokens, &vec, score)
	if err != nil {
		return chunk.Chunk{}, err
	}
	c.Language = chunk.Language(lang)
	c.Kind = chunk.Kind(kind)
	_ = json.Unmarshal(symbols, &c.Symbols)
	_ = json.Unmarshal(imports, &c.Imports)
	c.Embedding = vec.Slice()
	return c, nil
}
