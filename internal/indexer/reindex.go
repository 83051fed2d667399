package indexer

import (
	"context"

	"github.com/google/uuid"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// ReindexReport summarizes a reindex pass, the `ProcessingStats`-style
// summary supplemented features calls for , giving
// "Incremental reindex" an observable outcome. RunID
// correlates this pass across log lines; it is not a chunk id.
type ReindexReport struct {
	RunID      string
	Added      int
	Changed    int
	Removed    int
	Skipped    int
	Tombstoned int
	Failed     []string
}

// FileInput is one file offered to a reindex pass.
type FileInput struct {
	Path         string
	Content      []byte
	Language     chunk.Language
	LastModified int64
}

// Reindex applies the incremental-reindex policy of : files
// whose content hash is unchanged are skipped and not re-embedded;
// changed or new files are parsed, embedded, and upserted; ids present
// in `previous` but absent from `files` are tombstoned. Embedding calls
// are batched across all changed files in one request.
func Reindex(ctx context.Context, ix *Indexer, store vectorstore.Store, embedder embedding.Provider, files []FileInput, previous *PreviousIndex) (ReindexReport, *PreviousIndex, error) {
	report := ReindexReport{RunID: uuid.NewString()}
	nextHashes := make(map[string]string, len(files))
	nextChunkIDs := make(map[string][]string, len(files))
	seenPaths := make(map[string]struct{}, len(files))

	var toEmbed []chunk.Chunk
	var staleIDs []string
	for _, f := range files {
		seenPaths[f.Path] = struct{}{}
		currentHash := ContentHash(f.Content)
		nextHashes[f.Path] = currentHash

		if previous.Unchanged(f.Path, currentHash) {
			report.Skipped++
			if previous != nil {
				nextChunkIDs[f.Path] = previous.ChunkIDs[f.Path]
			}
			continue
		}

		result := ix.build(f.Path, f.Content, f.Language, f.LastModified)
		if result.HasErrors {
			report.Failed = append(report.Failed, f.Path)
		}
		isNew := previous == nil || previous.FileHashes[f.Path] == ""
		if isNew {
			report.Added++
		} else {
			report.Changed++
		}
		ids := make([]string, len(result.Chunks))
		for i, c := range result.Chunks {
			ids[i] = c.ID
		}
		nextChunkIDs[f.Path] = ids
		toEmbed = append(toEmbed, result.Chunks...)

		if !isNew {
			staleIDs = append(staleIDs, staleChunkIDs(previous.ChunkIDs[f.Path], ids)...)
		}
	}

	if len(staleIDs) > 0 {
		if err := store.Delete(ctx, staleIDs); err != nil {
			return report, nil, err
		}
		report.Tombstoned += len(staleIDs)
	}

	if len(toEmbed) > 0 {
		if err := embedChunks(ctx, embedder, toEmbed); err != nil {
			return report, nil, err
		}
		if err := store.Upsert(ctx, toEmbed); err != nil {
			return report, nil, err
		}
	}

	if previous != nil {
		for path, ids := range previous.ChunkIDs {
			if _, ok := seenPaths[path]; ok {
				continue
			}
			report.Removed++
			if len(ids) == 0 {
				continue
			}
			if err := store.Delete(ctx, ids); err != nil {
				return report, nil, err
			}
			report.Tombstoned += len(ids)
		}
	}

	return report, &PreviousIndex{FileHashes: nextHashes, ChunkIDs: nextChunkIDs}, nil
}

// staleChunkIDs returns the ids present in oldIDs but absent from
// newIDs — chunks whose content shifted enough to get a new id, or
// declarations dropped from an otherwise-still-present file.
func staleChunkIDs(oldIDs, newIDs []string) []string {
	if len(oldIDs) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(newIDs))
	for _, id := range newIDs {
		keep[id] = struct{}{}
	}
	var stale []string
	for _, id := range oldIDs {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func embedChunks(ctx context.Context, embedder embedding.Provider, chunks []chunk.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := embedder.Embed(ctx, texts, embedding.ModePassage)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}
	return nil
}
