package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/document"
)

// ChromemConfig holds configuration for the chromem-go backed store.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	Path string `koanf:"path"`

	// Compress enables gzip compression for stored data.
	Compress bool `koanf:"compress"`

	// Collection is the collection name. Default: "ragd_default".
	Collection string `koanf:"collection"`

	// VectorSize is the expected embedding dimension. Must match the
	// embedder's output dimension.
	VectorSize int `koanf:"vector_size"`
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "ragd_default"
	}
}

// Validate validates the configuration.
func (c ChromemConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: path required", ErrInvalidConfig)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements Store on top of chromem-go, an embeddable
// pure-Go vector database with its own directory persistence. Use it
// instead of SnapshotStore when the store should persist incrementally
// rather than through explicit snapshot files.
//
// Unlike SnapshotStore, equal-score ordering follows chromem's internal
// sort and is not tied to insertion order.
type ChromemStore struct {
	collection *chromem.Collection
	config     ChromemConfig
	logger     *zap.Logger
}

// NewChromemStore opens (creating if absent) the configured collection
// in a persistent chromem database.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := chromem.NewPersistentDB(config.Path, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	// Vectors always arrive precomputed; chromem must never embed.
	collection, err := db.GetOrCreateCollection(config.Collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", config.Collection, err)
	}

	logger.Info("chromem store initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("vector_size", config.VectorSize),
	)

	return &ChromemStore{collection: collection, config: config, logger: logger}, nil
}

func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("vectors must be supplied by the caller")
}

// Add appends a record with a precomputed vector.
func (s *ChromemStore) Add(vector []float32, segment document.TextSegment) (string, error) {
	if len(vector) != s.config.VectorSize {
		return "", fmt.Errorf("%w: store holds %d-dimensional vectors, got %d",
			ErrDimensionMismatch, s.config.VectorSize, len(vector))
	}

	id := uuid.NewString()
	doc := chromem.Document{
		ID:        id,
		Metadata:  document.CopyMetadata(segment.Metadata),
		Embedding: vector,
		Content:   segment.Text,
	}
	if err := s.collection.AddDocument(context.Background(), doc); err != nil {
		return "", fmt.Errorf("adding document: %w", err)
	}
	return id, nil
}

// FindRelevant implements the Store search contract over chromem's
// query path, filtering by minScore after the similarity search.
func (s *ChromemStore) FindRelevant(query []float32, maxResults int, minScore float64) ([]Match, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidConfig, maxResults)
	}
	if len(query) != s.config.VectorSize {
		return nil, fmt.Errorf("%w: store holds %d-dimensional vectors, query has %d",
			ErrDimensionMismatch, s.config.VectorSize, len(query))
	}

	count := s.collection.Count()
	if count == 0 {
		return []Match{}, nil
	}
	// chromem rejects nResults larger than the collection.
	if maxResults > count {
		maxResults = count
	}

	results, err := s.collection.QueryEmbedding(context.Background(), query, maxResults, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		score := float64(r.Similarity)
		if score < minScore {
			continue
		}
		matches = append(matches, Match{
			ID: r.ID,
			Segment: document.TextSegment{
				Text:     r.Content,
				Metadata: document.CopyMetadata(r.Metadata),
			},
			Score: score,
		})
	}
	return matches, nil
}

// Count returns the number of stored records.
func (s *ChromemStore) Count() int {
	return s.collection.Count()
}
