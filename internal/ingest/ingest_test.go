package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/splitter"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	split, err := splitter.New(splitter.Config{MaxChunkSize: 50, Overlap: 10}, nil)
	require.NoError(t, err)
	embedder, err := embeddings.NewStatic(32)
	require.NoError(t, err)
	return NewPipeline(document.NewLoader(nil, nil), split, embedder, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, 2000, cfg.MaxChunkSize)
	assert.Equal(t, 200, cfg.Overlap)
	assert.Equal(t, embeddings.DefaultTokenModel, cfg.TokenModel)

	cfg = Config{MaxChunkSize: 500, Overlap: 50, TokenModel: "gpt-4"}
	cfg.ApplyDefaults()
	assert.Equal(t, 500, cfg.MaxChunkSize)
	assert.Equal(t, 50, cfg.Overlap)
	assert.Equal(t, "gpt-4", cfg.TokenModel)
}

func TestPipeline_IngestFile(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)
	path := writeFile(t, t.TempDir(), "a.txt", "A short document about nothing in particular.")

	added, err := pipeline.IngestFile(context.Background(), path, document.KindText, store)
	require.NoError(t, err)
	assert.Greater(t, added, 0)
	assert.Equal(t, added, store.Count())

	// Segments carry file metadata for later source attribution.
	embedder, err := embeddings.NewStatic(32)
	require.NoError(t, err)
	vector, err := embedder.Embed(context.Background(), "short document")
	require.NoError(t, err)
	matches, err := store.FindRelevant(vector, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.txt", matches[0].Segment.Metadata[document.MetaFileName])
}

func TestPipeline_IngestFileBlank(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)
	path := writeFile(t, t.TempDir(), "empty.txt", "   ")

	_, err := pipeline.IngestFile(context.Background(), path, document.KindText, store)
	assert.ErrorIs(t, err, document.ErrBlankDocument)
	assert.Equal(t, 0, store.Count())
}

func TestPipeline_IngestFolder(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)

	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "First file with some content.")
	writeFile(t, dir, "two.txt", "Second file with other content.")
	writeFile(t, dir, "empty.txt", "")

	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, nested, "three.txt", "Third file, nested one level down.")

	result, err := pipeline.IngestFolder(context.Background(), dir, document.KindText, store)
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesFound)
	assert.Equal(t, 3, result.FilesIngested)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, result.SegmentsAdded, store.Count())
	assert.Greater(t, result.SegmentsAdded, 0)
}

func TestPipeline_IngestFolderRejectsURL(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)

	_, err := pipeline.IngestFolder(context.Background(), t.TempDir(), document.KindURL, store)
	assert.ErrorIs(t, err, document.ErrUnsupportedSourceKind)
}

func TestPipeline_IngestFolderMissingDir(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)

	_, err := pipeline.IngestFolder(context.Background(), filepath.Join(t.TempDir(), "absent"), document.KindText, store)
	assert.Error(t, err)
}

func TestPipeline_IngestFolderCancelled(t *testing.T) {
	pipeline := newTestPipeline(t)
	store := vectorstore.NewSnapshotStore(nil)

	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.IngestFolder(ctx, dir, document.KindText, store)
	assert.ErrorIs(t, err, context.Canceled)
}
