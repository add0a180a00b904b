// Package ops exposes the operation surface as a static dispatch
// table: operation name to typed handler, no reflection. Host glue
// (CLI, server, whatever embeds ragd) decodes parameters to JSON,
// dispatches by name, and encodes the JSON-marshalable result.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// Operation names.
const (
	OpLoadDocumentAndAnswer = "load-document-and-answer"
	OpChatWithMemory        = "chat-with-memory"
	OpCreateStore           = "create-store"
	OpAddDocumentToStore    = "add-document-to-store"
	OpAddFolderToStore      = "add-folder-to-store"
	OpQueryStore            = "query-store"
	OpAnswerFromStore       = "answer-from-store"
)

// ErrUnknownOperation is returned when dispatching an unregistered name.
var ErrUnknownOperation = errors.New("unknown operation")

// Deps carries the collaborators the handlers close over.
type Deps struct {
	Loader   *document.Loader
	Embedder embeddings.Embedder
	Backend  llm.Backend
	Cache    *vectorstore.Cache
	Ingest   ingest.Config
	Logger   *zap.Logger
}

// Handler executes one operation against a JSON-encoded request.
type Handler func(ctx context.Context, raw json.RawMessage) (any, error)

// Registry maps operation names to handlers.
type Registry struct {
	handlers map[string]Handler
	deps     Deps
	rag      *rag.Service
}

// NewRegistry builds the full operation table.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Ingest.ApplyDefaults()

	r := &Registry{
		handlers: make(map[string]Handler),
		deps:     deps,
		rag:      rag.NewService(deps.Embedder, deps.Backend, deps.Logger),
	}

	register(r, OpLoadDocumentAndAnswer, r.loadDocumentAndAnswer)
	register(r, OpChatWithMemory, r.chatWithMemory)
	register(r, OpCreateStore, r.createStore)
	register(r, OpAddDocumentToStore, r.addDocumentToStore)
	register(r, OpAddFolderToStore, r.addFolderToStore)
	register(r, OpQueryStore, r.queryStore)
	register(r, OpAnswerFromStore, r.answerFromStore)
	return r
}

// register decodes the raw request into the handler's typed request
// struct, keeping the table statically typed.
func register[Req any](r *Registry, name string, fn func(ctx context.Context, req Req) (any, error)) {
	r.handlers[name] = func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req Req
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &req); err != nil {
				return nil, fmt.Errorf("decoding %s request: %w", name, err)
			}
		}
		return fn(ctx, req)
	}
}

// Dispatch runs the named operation.
func (r *Registry) Dispatch(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return handler(ctx, raw)
}

// Operations returns the registered operation names, sorted.
func (r *Registry) Operations() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
