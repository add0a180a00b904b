package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// staticBackend answers every prompt with a fixed reply.
type staticBackend struct {
	reply      string
	lastPrompt string
}

func (b *staticBackend) Generate(_ context.Context, prompt string, _ []llm.Message) (*llm.Result, error) {
	b.lastPrompt = prompt
	return &llm.Result{
		Text:  b.reply,
		Usage: llm.TokenUsage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6},
	}, nil
}

func newTestRegistry(t *testing.T) (*Registry, *staticBackend) {
	t.Helper()
	embedder, err := embeddings.NewStatic(64)
	require.NoError(t, err)
	backend := &staticBackend{reply: "the answer"}

	registry := NewRegistry(Deps{
		Loader:   document.NewLoader(nil, nil),
		Embedder: embedder,
		Backend:  backend,
		Cache:    vectorstore.NewCache(nil),
		Ingest:   ingest.Config{MaxChunkSize: 100, Overlap: 10},
	})
	return registry, backend
}

func dispatch(t *testing.T, registry *Registry, name string, req, out any) {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	result, err := registry.Dispatch(context.Background(), name, raw)
	require.NoError(t, err)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(encoded, out))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_Operations(t *testing.T) {
	registry, _ := newTestRegistry(t)

	assert.Equal(t, []string{
		OpAddDocumentToStore,
		OpAddFolderToStore,
		OpAnswerFromStore,
		OpChatWithMemory,
		OpCreateStore,
		OpLoadDocumentAndAnswer,
		OpQueryStore,
	}, registry.Operations())
}

func TestRegistry_DispatchUnknown(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Dispatch(context.Background(), "no-such-op", nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestRegistry_DispatchMalformedRequest(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Dispatch(context.Background(), OpCreateStore, json.RawMessage(`{"storeName": 7`))
	assert.Error(t, err)
}

func TestCreateStore(t *testing.T) {
	registry, _ := newTestRegistry(t)
	storePath := filepath.Join(t.TempDir(), "docs.store")

	var resp CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &resp)

	assert.Equal(t, storePath, resp.StoreName)
	assert.Equal(t, "created", resp.Status)

	loaded, err := vectorstore.LoadFile(storePath, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Count())
}

func TestAddDocumentToStore(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "docs.store")
	docPath := writeFile(t, dir, "notes.txt", "alpha bravo charlie delta echo foxtrot")

	var created CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &created)

	var resp AddDocumentResponse
	dispatch(t, registry, OpAddDocumentToStore, AddDocumentRequest{
		StoreName:   storePath,
		ContextPath: docPath,
		FileType:    "text",
	}, &resp)

	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, "text", resp.FileType)
	assert.Greater(t, resp.SegmentsAdded, 0)

	loaded, err := vectorstore.LoadFile(storePath, nil)
	require.NoError(t, err)
	assert.Equal(t, resp.SegmentsAdded, loaded.Count())
}

func TestAddDocumentToStore_MissingStore(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dir := t.TempDir()
	docPath := writeFile(t, dir, "notes.txt", "content")

	raw, err := json.Marshal(AddDocumentRequest{
		StoreName:   filepath.Join(dir, "absent.store"),
		ContextPath: docPath,
		FileType:    "text",
	})
	require.NoError(t, err)

	_, err = registry.Dispatch(context.Background(), OpAddDocumentToStore, raw)
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)
}

func TestAddDocumentToStore_BadFileType(t *testing.T) {
	registry, _ := newTestRegistry(t)

	raw, err := json.Marshal(AddDocumentRequest{StoreName: "x", ContextPath: "y", FileType: "docx"})
	require.NoError(t, err)

	_, err = registry.Dispatch(context.Background(), OpAddDocumentToStore, raw)
	assert.ErrorIs(t, err, document.ErrUnsupportedSourceKind)
}

func TestAddFolderToStore(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "docs.store")

	corpus := filepath.Join(dir, "corpus")
	require.NoError(t, os.MkdirAll(corpus, 0o755))
	writeFile(t, corpus, "one.txt", "first document body")
	writeFile(t, corpus, "two.txt", "second document body")
	writeFile(t, corpus, "empty.txt", "")

	var created CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &created)

	var resp AddFolderResponse
	dispatch(t, registry, OpAddFolderToStore, AddFolderRequest{
		StoreName:  storePath,
		FolderPath: corpus,
		FileType:   "text",
	}, &resp)

	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, 3, resp.FilesFound)
	assert.Equal(t, 2, resp.FilesIngested)
	assert.Equal(t, 1, resp.FilesSkipped)

	loaded, err := vectorstore.LoadFile(storePath, nil)
	require.NoError(t, err)
	assert.Equal(t, resp.SegmentsAdded, loaded.Count())
}

func TestQueryStore(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "docs.store")
	writeFile(t, dir, "notes.txt", "alpha bravo charlie")

	var created CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &created)
	var added AddDocumentResponse
	dispatch(t, registry, OpAddDocumentToStore, AddDocumentRequest{
		StoreName:   storePath,
		ContextPath: filepath.Join(dir, "notes.txt"),
		FileType:    "text",
	}, &added)

	var resp QueryStoreResponse
	dispatch(t, registry, OpQueryStore, QueryStoreRequest{
		StoreName: storePath,
		Question:  "alpha bravo charlie",
		MinScore:  0.1,
	}, &resp)

	assert.Equal(t, "alpha bravo charlie", resp.Information)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "notes.txt", resp.Sources[0].FileName)
}

func TestAnswerFromStore(t *testing.T) {
	registry, backend := newTestRegistry(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "docs.store")
	docPath := writeFile(t, dir, "notes.txt", "alpha bravo charlie")

	var created CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &created)
	var added AddDocumentResponse
	dispatch(t, registry, OpAddDocumentToStore, AddDocumentRequest{
		StoreName:   storePath,
		ContextPath: docPath,
		FileType:    "text",
	}, &added)

	var resp AnswerFromStoreResponse
	dispatch(t, registry, OpAnswerFromStore, AnswerFromStoreRequest{
		StoreName: storePath,
		Question:  "alpha bravo charlie",
		MinScore:  0.1,
		GetLatest: true,
	}, &resp)

	assert.Equal(t, "the answer", resp.Text)
	assert.Equal(t, 6, resp.Usage.TotalTokens)
	require.Len(t, resp.Sources, 1)
	assert.Contains(t, backend.lastPrompt, "alpha bravo charlie")
}

func TestQueryStore_StaleCacheUntilGetLatest(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dir := t.TempDir()
	storePath := filepath.Join(dir, "docs.store")
	docPath := writeFile(t, dir, "notes.txt", "alpha bravo charlie")

	var created CreateStoreResponse
	dispatch(t, registry, OpCreateStore, CreateStoreRequest{StoreName: storePath}, &created)

	// Prime the cache on the empty store.
	var empty QueryStoreResponse
	dispatch(t, registry, OpQueryStore, QueryStoreRequest{
		StoreName: storePath,
		Question:  "alpha bravo charlie",
		MinScore:  0.1,
	}, &empty)
	assert.Empty(t, empty.Sources)

	var added AddDocumentResponse
	dispatch(t, registry, OpAddDocumentToStore, AddDocumentRequest{
		StoreName:   storePath,
		ContextPath: docPath,
		FileType:    "text",
	}, &added)

	// Cached instance still serves the pre-update state.
	var stale QueryStoreResponse
	dispatch(t, registry, OpQueryStore, QueryStoreRequest{
		StoreName: storePath,
		Question:  "alpha bravo charlie",
		MinScore:  0.1,
	}, &stale)
	assert.Empty(t, stale.Sources)

	var fresh QueryStoreResponse
	dispatch(t, registry, OpQueryStore, QueryStoreRequest{
		StoreName: storePath,
		Question:  "alpha bravo charlie",
		MinScore:  0.1,
		GetLatest: true,
	}, &fresh)
	assert.Len(t, fresh.Sources, 1)
}

func TestLoadDocumentAndAnswer(t *testing.T) {
	registry, backend := newTestRegistry(t)
	docPath := writeFile(t, t.TempDir(), "notes.txt", "alpha bravo charlie")

	var resp LoadDocumentResponse
	dispatch(t, registry, OpLoadDocumentAndAnswer, LoadDocumentRequest{
		Question:    "alpha bravo charlie",
		ContextPath: docPath,
		FileType:    "text",
	}, &resp)

	assert.Equal(t, "the answer", resp.Text)
	assert.Equal(t, docPath, resp.FilePath)
	assert.Equal(t, "text", resp.FileType)
	require.Len(t, resp.Sources, 1)
	assert.Contains(t, backend.lastPrompt, "alpha bravo charlie")
}

func TestChatWithMemory(t *testing.T) {
	registry, _ := newTestRegistry(t)
	dbPath := filepath.Join(t.TempDir(), "chat.db")

	var first ChatResponse
	dispatch(t, registry, OpChatWithMemory, ChatRequest{
		Message:     "hello",
		MemoryName:  "alice",
		DBFilePath:  dbPath,
		MaxMessages: 10,
	}, &first)

	assert.Equal(t, "the answer", first.Reply)
	assert.Equal(t, 2, first.Messages)

	var second ChatResponse
	dispatch(t, registry, OpChatWithMemory, ChatRequest{
		Message:     "again",
		MemoryName:  "alice",
		DBFilePath:  dbPath,
		MaxMessages: 10,
	}, &second)

	// History persists across dispatches through the database file.
	assert.Equal(t, 4, second.Messages)
}
