package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Static is a deterministic, offline embedder. It hashes whitespace
// tokens into a fixed number of buckets and L2-normalizes the result,
// so identical texts always produce identical unit vectors and texts
// sharing words land near each other. Intended for development and
// tests; it carries no semantic model.
type Static struct {
	dimension int
}

// NewStatic creates a Static embedder with the given vector dimension.
func NewStatic(dimension int) (*Static, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", ErrInvalidConfig)
	}
	return &Static{dimension: dimension}, nil
}

// Embed returns the hashed bag-of-words unit vector for text.
func (s *Static) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vector := make([]float32, s.dimension)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vector[int(h.Sum32())%s.dimension]++
	}

	var sumSq float64
	for _, v := range vector {
		sumSq += float64(v) * float64(v)
	}
	if sumSq > 0 {
		norm := float32(1 / math.Sqrt(sumSq))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector, nil
}

// Dimension returns the vector size.
func (s *Static) Dimension() int {
	return s.dimension
}
