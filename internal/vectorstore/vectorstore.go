// Package vectorstore provides embedding record storage with cosine
// similarity search.
//
// The default implementation is SnapshotStore, an in-memory record list
// persisted as a single snapshot file at a caller-chosen path. A
// chromem-go backed alternative covers deployments that want managed
// directory persistence instead of explicit snapshots.
package vectorstore

import (
	"errors"
	"fmt"
	"math"

	"github.com/fyrsmithlabs/ragd/internal/document"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration or search
	// parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch is returned when a vector's size disagrees
	// with the dimension already present in the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound is returned when loading a snapshot path that does
	// not exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot is returned when a snapshot file cannot be
	// decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Record is one stored (vector, segment) pair. ID is store-assigned,
// unique and stable for the record's lifetime, never reused.
type Record struct {
	ID      string
	Vector  []float32
	Segment document.TextSegment
}

// Match is one search hit: the stored segment with its similarity score.
type Match struct {
	ID      string
	Segment document.TextSegment
	Score   float64
}

// Store is the record storage and similarity search contract.
type Store interface {
	// Add appends a record and returns its assigned id. Duplicate
	// content is never rejected.
	Add(vector []float32, segment document.TextSegment) (string, error)

	// FindRelevant scores every stored vector against query by cosine
	// similarity, keeps matches with score >= minScore, and returns at
	// most maxResults ordered by descending score. An empty store
	// returns an empty slice, not an error.
	FindRelevant(query []float32, maxResults int, minScore float64) ([]Match, error)

	// Count returns the number of stored records.
	Count() int
}

// cosineSimilarity returns the cosine of the angle between a and b,
// in [-1, 1]. A zero vector scores 0 against everything.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
