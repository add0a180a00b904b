package embeddings

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/fyrsmithlabs/ragd/internal/splitter"
)

// DefaultTokenModel is the tokenizer used when no model is configured.
// Chunk bounds only need to approximate the serving model's tokenizer,
// so a widely-available encoding is fine.
const DefaultTokenModel = "gpt-3.5-turbo"

// TokenLength returns a LengthFunc measuring text in model tokens for
// the given model name, so splitter bounds track what the backend
// actually bills.
func TokenLength(model string) splitter.LengthFunc {
	if model == "" {
		model = DefaultTokenModel
	}
	return func(text string) int {
		return llms.CountTokens(model, text)
	}
}
