package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/llm"
)

// ErrBlankInput is returned for empty or whitespace-only user messages.
var ErrBlankInput = errors.New("blank input")

// ChatService runs multi-turn conversations on top of a Store. On each
// turn it feeds the persisted window into the completion backend,
// appends the new exchange, re-applies the window, and commits — so
// persisted state always equals the active window, never more.
type ChatService struct {
	store   *Store
	backend llm.Backend
	logger  *zap.Logger
}

// NewChatService creates a ChatService. A nil logger falls back to a
// no-op logger.
func NewChatService(store *Store, backend llm.Backend, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{store: store, backend: backend, logger: logger}
}

// TurnResult is the outcome of one conversational turn.
type TurnResult struct {
	Reply    string         `json:"response"`
	Usage    llm.TokenUsage `json:"tokenUsage"`
	Messages int            `json:"messagesKept"`
}

// Turn runs one conversational turn for memoryID: generate a reply
// conditioned on the stored history, then persist the windowed history
// including this exchange.
func (s *ChatService) Turn(ctx context.Context, memoryID, userText string, maxMessages int) (*TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("%w: message", ErrBlankInput)
	}
	if maxMessages <= 0 {
		return nil, fmt.Errorf("%w: max messages must be positive, got %d", ErrInvalidConfig, maxMessages)
	}

	history, err := s.store.Messages(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.Generate(ctx, userText, history)
	if err != nil {
		return nil, fmt.Errorf("chat turn for %s: %w", memoryID, err)
	}

	windowed, err := ApplyWindow(history, []llm.Message{
		{Role: llm.RoleUser, Text: userText},
		{Role: llm.RoleAssistant, Text: result.Text},
	}, maxMessages)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, memoryID, windowed); err != nil {
		return nil, err
	}

	s.logger.Debug("chat turn committed",
		zap.String("memory_id", memoryID),
		zap.Int("messages_kept", len(windowed)),
	)

	return &TurnResult{
		Reply:    result.Text,
		Usage:    result.Usage,
		Messages: len(windowed),
	}, nil
}
