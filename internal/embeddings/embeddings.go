// Package embeddings provides embedding generation and tokenizer-backed
// text length measurement.
//
// The production adapter speaks the OpenAI embeddings API through
// langchaingo, which also covers OpenAI-compatible local servers such
// as TEI. A deterministic Static embedder is available for offline
// development and tests.
package embeddings

import (
	"context"
	"errors"
)

// Sentinel errors for embedding generation.
var (
	// ErrEmbeddingFailed indicates an embedding backend error,
	// including timeouts.
	ErrEmbeddingFailed = errors.New("embedding backend failure")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput indicates empty or whitespace-only input text.
	ErrEmptyInput = errors.New("empty input text")
)

// Embedder maps a text to a fixed-length vector. Implementations must
// be stateless and side-effect-free per call; concurrent calls are
// independent. The vector dimension is fixed at construction for the
// lifetime of any store the embedder writes into.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
