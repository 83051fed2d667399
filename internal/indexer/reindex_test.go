package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-dev/prism/internal/chunk"
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// Test Plan:
// - scenario 3: reindexing identical bytes twice is a zero-op (no added/changed/tombstoned)
// - a changed file is re-embedded and upserted, reporting Changed, not Added
// - a removed file's chunks are tombstoned and counted

const sampleGo = `package sample

func Greet(name string) string {
	return "hello " + name
}
`

func newTestStore(t *testing.T) vectorstore.Store {
	t.Helper()
	store, err := vectorstore.New(100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReindex_IdenticalBytesIsZeroOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ix := New(0)
	store := newTestStore(t)
	embedder := embedding.NewMockProvider(32)

	files := []FileInput{{Path: "sample.go", Content: []byte(sampleGo), Language: chunk.LangGo, LastModified: 1000}}

	report1, prev, err := Reindex(ctx, ix, store, embedder, files, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report1.Added)

	stats1, err := store.Stats(ctx)
	require.NoError(t, err)

	report2, _, err := Reindex(ctx, ix, store, embedder, files, prev)
	require.NoError(t, err)
	assert.Equal(t, 0, report2.Added)
	assert.Equal(t, 0, report2.Changed)
	assert.Equal(t, 0, report2.Tombstoned)
	assert.Equal(t, 1, report2.Skipped)

	stats2, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats1.ChunkCount, stats2.ChunkCount)
}

func TestReindex_ChangedFileReportsChanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ix := New(0)
	store := newTestStore(t)
	embedder := embedding.NewMockProvider(32)

	files := []FileInput{{Path: "sample.go", Content: []byte(sampleGo), Language: chunk.LangGo, LastModified: 1000}}
	_, prev, err := Reindex(ctx, ix, store, embedder, files, nil)
	require.NoError(t, err)

	changed := []FileInput{{Path: "sample.go", Content: []byte(sampleGo + "\nfunc Extra() {}\n"), Language: chunk.LangGo, LastModified: 2000}}
	report, _, err := Reindex(ctx, ix, store, embedder, changed, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 0, report.Added)
}

func TestReindex_ChangedFileTombstonesDroppedChunks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ix := New(0)
	store := newTestStore(t)
	embedder := embedding.NewMockProvider(32)

	withExtra := sampleGo + "\nfunc Extra() {\n\treturn\n}\n"
	files := []FileInput{{Path: "sample.go", Content: []byte(withExtra), Language: chunk.LangGo, LastModified: 1000}}
	_, prev, err := Reindex(ctx, ix, store, embedder, files, nil)
	require.NoError(t, err)
	oldIDs := append([]string(nil), prev.ChunkIDs["sample.go"]...)
	require.Len(t, oldIDs, 3) // package-clause block, Greet, Extra

	statsBefore, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, statsBefore.ChunkCount)

	// Extra() is dropped entirely; the package-clause block and Greet keep
	// their byte ranges, so their chunk ids survive while Extra's old id
	// must be tombstoned.
	shrunk := []FileInput{{Path: "sample.go", Content: []byte(sampleGo), Language: chunk.LangGo, LastModified: 2000}}
	report, next, err := Reindex(ctx, ix, store, embedder, shrunk, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 1, report.Tombstoned)

	newIDs := next.ChunkIDs["sample.go"]
	assert.Len(t, newIDs, 2)
	assert.Subset(t, oldIDs, newIDs)

	statsAfter, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, statsAfter.ChunkCount)
}

func TestReindex_RemovedFileIsTombstoned(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ix := New(0)
	store := newTestStore(t)
	embedder := embedding.NewMockProvider(32)

	files := []FileInput{{Path: "sample.go", Content: []byte(sampleGo), Language: chunk.LangGo, LastModified: 1000}}
	_, prev, err := Reindex(ctx, ix, store, embedder, files, nil)
	require.NoError(t, err)

	report, _, err := Reindex(ctx, ix, store, embedder, nil, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)
	assert.Greater(t, report.Tombstoned, 0)
}
