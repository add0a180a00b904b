package ops

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/memory"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/splitter"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Ad-hoc load-and-answer uses tighter chunks than store ingestion,
// matching the historical operation defaults.
const (
	adhocChunkSize = 1000
	adhocOverlap   = 200
)

// pipeline builds an ingestion pipeline with the given chunk bounds.
func (r *Registry) pipeline(maxChunkSize, overlap int) (*ingest.Pipeline, error) {
	split, err := splitter.New(
		splitter.Config{MaxChunkSize: maxChunkSize, Overlap: overlap},
		embeddings.TokenLength(r.deps.Ingest.TokenModel),
	)
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(r.deps.Loader, split, r.deps.Embedder, r.deps.Logger), nil
}

// CreateStoreRequest creates a new, empty store snapshot.
type CreateStoreRequest struct {
	StoreName string `json:"storeName"`
}

// CreateStoreResponse reports the created store.
type CreateStoreResponse struct {
	StoreName string `json:"storeName"`
	Status    string `json:"status"`
}

func (r *Registry) createStore(_ context.Context, req CreateStoreRequest) (any, error) {
	store := vectorstore.NewSnapshotStore(r.deps.Logger)
	if err := store.SaveFile(req.StoreName); err != nil {
		return nil, err
	}
	return CreateStoreResponse{StoreName: req.StoreName, Status: "created"}, nil
}

// AddDocumentRequest adds one document to an existing store snapshot.
type AddDocumentRequest struct {
	StoreName   string `json:"storeName"`
	ContextPath string `json:"contextPath"`
	FileType    string `json:"fileType"`
}

// AddDocumentResponse reports the updated store.
type AddDocumentResponse struct {
	StoreName     string `json:"storeName"`
	FilePath      string `json:"filePath"`
	FileType      string `json:"fileType"`
	SegmentsAdded int    `json:"segmentsAdded"`
	Status        string `json:"status"`
}

func (r *Registry) addDocumentToStore(ctx context.Context, req AddDocumentRequest) (any, error) {
	kind, err := document.ParseSourceKind(req.FileType)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.LoadFile(req.StoreName, r.deps.Logger)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.pipeline(r.deps.Ingest.MaxChunkSize, r.deps.Ingest.Overlap)
	if err != nil {
		return nil, err
	}

	added, err := pipeline.IngestFile(ctx, req.ContextPath, kind, store)
	if err != nil {
		return nil, err
	}
	if err := store.SaveFile(req.StoreName); err != nil {
		return nil, err
	}
	return AddDocumentResponse{
		StoreName:     req.StoreName,
		FilePath:      req.ContextPath,
		FileType:      string(kind),
		SegmentsAdded: added,
		Status:        "updated",
	}, nil
}

// AddFolderRequest ingests every regular file under a directory tree.
type AddFolderRequest struct {
	StoreName  string `json:"storeName"`
	FolderPath string `json:"folderPath"`
	FileType   string `json:"fileType"`
}

// AddFolderResponse reports per-file outcomes of the folder ingestion.
type AddFolderResponse struct {
	StoreName  string `json:"storeName"`
	FolderPath string `json:"folderPath"`
	FileType   string `json:"fileType"`
	ingest.FolderResult
	Status string `json:"status"`
}

func (r *Registry) addFolderToStore(ctx context.Context, req AddFolderRequest) (any, error) {
	kind, err := document.ParseSourceKind(req.FileType)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.LoadFile(req.StoreName, r.deps.Logger)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.pipeline(r.deps.Ingest.MaxChunkSize, r.deps.Ingest.Overlap)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.IngestFolder(ctx, req.FolderPath, kind, store)
	if err != nil {
		return nil, err
	}
	if err := store.SaveFile(req.StoreName); err != nil {
		return nil, err
	}
	return AddFolderResponse{
		StoreName:    req.StoreName,
		FolderPath:   req.FolderPath,
		FileType:     string(kind),
		FolderResult: *result,
		Status:       "updated",
	}, nil
}

// QueryStoreRequest retrieves relevant segments without a completion.
type QueryStoreRequest struct {
	StoreName  string  `json:"storeName"`
	Question   string  `json:"question"`
	MaxResults int     `json:"maxResults"`
	MinScore   float64 `json:"minScore"`
	GetLatest  bool    `json:"getLatest"`
}

// QueryStoreResponse carries the retrieved information and sources.
type QueryStoreResponse struct {
	StoreName   string       `json:"storeName"`
	Question    string       `json:"question"`
	MaxResults  int          `json:"maxResults"`
	MinScore    float64      `json:"minScore"`
	Information string       `json:"information"`
	Sources     []rag.Source `json:"sources"`
}

func (r *Registry) queryStore(ctx context.Context, req QueryStoreRequest) (any, error) {
	store, err := r.deps.Cache.Get(req.StoreName, req.GetLatest)
	if err != nil {
		return nil, err
	}

	opts := rag.Options{MaxResults: req.MaxResults, MinScore: req.MinScore}
	result, err := r.rag.Query(ctx, req.Question, store, opts)
	if err != nil {
		return nil, err
	}
	return QueryStoreResponse{
		StoreName:   req.StoreName,
		Question:    req.Question,
		MaxResults:  req.MaxResults,
		MinScore:    req.MinScore,
		Information: result.Information,
		Sources:     result.Sources,
	}, nil
}

// AnswerFromStoreRequest answers a question grounded on a store.
type AnswerFromStoreRequest struct {
	StoreName  string  `json:"storeName"`
	Question   string  `json:"question"`
	MaxResults int     `json:"maxResults"`
	MinScore   float64 `json:"minScore"`
	GetLatest  bool    `json:"getLatest"`
}

// AnswerFromStoreResponse carries the grounded answer.
type AnswerFromStoreResponse struct {
	StoreName string `json:"storeName"`
	Question  string `json:"question"`
	GetLatest bool   `json:"getLatest"`
	rag.Answer
}

func (r *Registry) answerFromStore(ctx context.Context, req AnswerFromStoreRequest) (any, error) {
	store, err := r.deps.Cache.Get(req.StoreName, req.GetLatest)
	if err != nil {
		return nil, err
	}

	opts := rag.Options{MaxResults: req.MaxResults, MinScore: req.MinScore}
	answer, err := r.rag.Answer(ctx, req.Question, store, opts)
	if err != nil {
		return nil, err
	}
	return AnswerFromStoreResponse{
		StoreName: req.StoreName,
		Question:  req.Question,
		GetLatest: req.GetLatest,
		Answer:    *answer,
	}, nil
}

// LoadDocumentRequest ingests one document into an ephemeral store and
// answers a question against it in a single call.
type LoadDocumentRequest struct {
	Question    string `json:"question"`
	ContextPath string `json:"contextPath"`
	FileType    string `json:"fileType"`
}

// LoadDocumentResponse carries the answer plus the ingested source.
type LoadDocumentResponse struct {
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"`
	Question string `json:"question"`
	rag.Answer
}

func (r *Registry) loadDocumentAndAnswer(ctx context.Context, req LoadDocumentRequest) (any, error) {
	kind, err := document.ParseSourceKind(req.FileType)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.pipeline(adhocChunkSize, adhocOverlap)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewSnapshotStore(r.deps.Logger)
	if _, err := pipeline.IngestFile(ctx, req.ContextPath, kind, store); err != nil {
		return nil, err
	}

	answer, err := r.rag.Answer(ctx, req.Question, store, rag.Options{})
	if err != nil {
		return nil, err
	}
	return LoadDocumentResponse{
		FilePath: req.ContextPath,
		FileType: string(kind),
		Question: req.Question,
		Answer:   *answer,
	}, nil
}

// ChatRequest runs one conversational turn against a persistent memory.
type ChatRequest struct {
	Message     string `json:"message"`
	MemoryName  string `json:"memoryName"`
	DBFilePath  string `json:"dbFilePath"`
	MaxMessages int    `json:"maxMessages"`
}

// ChatResponse carries the reply and the memory coordinates.
type ChatResponse struct {
	MemoryName  string `json:"memoryName"`
	DBFilePath  string `json:"dbFilePath"`
	MaxMessages int    `json:"maxMessages"`
	memory.TurnResult
}

func (r *Registry) chatWithMemory(ctx context.Context, req ChatRequest) (any, error) {
	store, err := memory.Open(req.DBFilePath, r.deps.Logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	chat := memory.NewChatService(store, r.deps.Backend, r.deps.Logger)
	result, err := chat.Turn(ctx, req.MemoryName, req.Message, req.MaxMessages)
	if err != nil {
		return nil, fmt.Errorf("chat with memory %s: %w", req.MemoryName, err)
	}
	return ChatResponse{
		MemoryName:  req.MemoryName,
		DBFilePath:  req.DBFilePath,
		MaxMessages: req.MaxMessages,
		TurnResult:  *result,
	}, nil
}
