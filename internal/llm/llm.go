// Package llm adapts chat-completion backends behind a minimal
// prompt-in, text-out interface. The core treats the backend as a pure
// function with latency; retries and backoff belong to the backend's
// own client, not here.
package llm

import (
	"context"
	"errors"
)

// ErrBackendFailure wraps completion backend errors, including timeouts.
// The wrapped message names the backend and the failing operation so
// callers can decide whether to retry.
var ErrBackendFailure = errors.New("backend failure")

// Role tags a chat message with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one role-tagged text unit in a conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// TokenUsage is the backend-reported token accounting for one call.
// All fields are zero when the backend does not report usage.
type TokenUsage struct {
	PromptTokens     int `json:"input"`
	CompletionTokens int `json:"output"`
	TotalTokens      int `json:"total"`
}

// Result is a completion backend's answer to one prompt.
type Result struct {
	Text  string
	Usage TokenUsage
}

// Backend generates a completion for a prompt, optionally conditioned
// on prior conversation messages supplied oldest first.
type Backend interface {
	Generate(ctx context.Context, prompt string, prior []Message) (*Result, error)
}
