// Package rag answers questions grounded on segments retrieved from a
// vector store.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// ErrBlankInput is returned for empty or whitespace-only questions.
var ErrBlankInput = errors.New("blank input")

// Retrieval defaults when the caller leaves Options fields unset.
const (
	DefaultMaxResults = 5
	DefaultMinScore   = 0.7
)

// Options bound a retrieval call.
type Options struct {
	// MaxResults caps the number of retrieved segments. Zero or
	// negative means DefaultMaxResults.
	MaxResults int

	// MinScore is the similarity floor. The literal value 0 is treated
	// as "unset" and substituted with DefaultMinScore, mirroring the
	// historical operation surface; pass a marginally positive value
	// to genuinely accept everything.
	MinScore float64
}

func (o Options) normalized() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MinScore == 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}

// Source is one retrieved segment with its origin metadata and score.
type Source struct {
	FileName              string  `json:"fileName,omitempty"`
	FullPath              string  `json:"fullPath,omitempty"`
	AbsoluteDirectoryPath string  `json:"absoluteDirectoryPath,omitempty"`
	URL                   string  `json:"url,omitempty"`
	Score                 float64 `json:"individualScore"`
	Text                  string  `json:"textSegment"`
}

// Answer is the grounded response to one question.
type Answer struct {
	Text    string         `json:"response"`
	Sources []Source       `json:"sources"`
	Usage   llm.TokenUsage `json:"tokenUsage"`
}

// QueryResult is a retrieval-only result: the joined segment texts plus
// their sources, without invoking the completion backend.
type QueryResult struct {
	Information string   `json:"information"`
	Sources     []Source `json:"sources"`
}

// Service is the retrieval-augmented query service.
type Service struct {
	embedder embeddings.Embedder
	backend  llm.Backend
	logger   *zap.Logger
}

// NewService creates a Service. A nil logger falls back to a no-op
// logger.
func NewService(embedder embeddings.Embedder, backend llm.Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, backend: backend, logger: logger}
}

// Answer embeds the question, retrieves the most relevant segments from
// store, and asks the completion backend for an answer grounded on
// them. When nothing clears the score floor the backend is still
// invoked with an empty context; that is degradation, not an error.
func (s *Service) Answer(ctx context.Context, question string, store vectorstore.Store, opts Options) (*Answer, error) {
	matches, err := s.retrieve(ctx, question, store, opts)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(question, joinMatchTexts(matches))
	result, err := s.backend.Generate(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("answering %q: %w", question, err)
	}

	s.logger.Debug("question answered",
		zap.Int("sources", len(matches)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &Answer{
		Text:    result.Text,
		Sources: sourcesFromMatches(matches),
		Usage:   result.Usage,
	}, nil
}

// Query retrieves relevant segments without invoking the completion
// backend.
func (s *Service) Query(ctx context.Context, question string, store vectorstore.Store, opts Options) (*QueryResult, error) {
	matches, err := s.retrieve(ctx, question, store, opts)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		Information: joinMatchTexts(matches),
		Sources:     sourcesFromMatches(matches),
	}, nil
}

func (s *Service) retrieve(ctx context.Context, question string, store vectorstore.Store, opts Options) ([]vectorstore.Match, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question", ErrBlankInput)
	}
	opts = opts.normalized()

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	matches, err := store.FindRelevant(vector, opts.MaxResults, opts.MinScore)
	if err != nil {
		return nil, fmt.Errorf("retrieving segments: %w", err)
	}
	return matches, nil
}

// buildPrompt composes the grounding prompt, most relevant segment
// first. With no retrieved information the bare question goes through.
func buildPrompt(question, information string) string {
	if information == "" {
		return question
	}
	return question + "\n\nAnswer using the following information:\n" + information
}

func joinMatchTexts(matches []vectorstore.Match) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Segment.Text)
	}
	return strings.Join(texts, "\n\n")
}

func sourcesFromMatches(matches []vectorstore.Match) []Source {
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		meta := m.Segment.Metadata
		sources = append(sources, Source{
			FileName:              meta[document.MetaFileName],
			FullPath:              meta[document.MetaFullPath],
			AbsoluteDirectoryPath: meta[document.MetaAbsoluteDirectoryPath],
			URL:                   meta[document.MetaURL],
			Score:                 m.Score,
			Text:                  m.Segment.Text,
		})
	}
	return sources
}
