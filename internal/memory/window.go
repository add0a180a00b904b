package memory

import (
	"fmt"

	"github.com/fyrsmithlabs/ragd/internal/llm"
)

// ApplyWindow appends incoming to history and truncates the result to
// the most recent maxMessages entries, oldest dropped first. The
// returned slice is a fresh copy.
func ApplyWindow(history, incoming []llm.Message, maxMessages int) ([]llm.Message, error) {
	if maxMessages <= 0 {
		return nil, fmt.Errorf("%w: max messages must be positive, got %d", ErrInvalidConfig, maxMessages)
	}

	combined := make([]llm.Message, 0, len(history)+len(incoming))
	combined = append(combined, history...)
	combined = append(combined, incoming...)

	if len(combined) > maxMessages {
		combined = combined[len(combined)-maxMessages:]
	}
	return combined, nil
}
