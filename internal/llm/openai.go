package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// ErrInvalidConfig indicates invalid backend configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds configuration for the OpenAI-compatible completion
// backend. BaseURL may point at any endpoint speaking the OpenAI chat
// API, including local inference servers.
type Config struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  string `koanf:"api_key"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAI is a Backend over langchaingo's OpenAI client.
type OpenAI struct {
	llm    *openai.LLM
	config Config
	logger *zap.Logger
}

// NewOpenAI creates an OpenAI-compatible completion backend.
func NewOpenAI(config Config, logger *zap.Logger) (*OpenAI, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiKey := config.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local endpoints
		apiKey = "placeholder"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &OpenAI{llm: client, config: config, logger: logger}, nil
}

// Generate sends the prior messages plus the prompt to the chat API and
// returns the answer text with token accounting.
func (o *OpenAI) Generate(ctx context.Context, prompt string, prior []Message) (*Result, error) {
	messages := make([]llms.MessageContent, 0, len(prior)+1)
	for _, m := range prior {
		messages = append(messages, llms.TextParts(chatMessageType(m.Role), m.Text))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := o.llm.GenerateContent(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: completion via %s (model %s): %v",
			ErrBackendFailure, o.config.BaseURL, o.config.Model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion via %s: empty response",
			ErrBackendFailure, o.config.BaseURL)
	}

	choice := resp.Choices[0]
	usage := usageFromInfo(choice.GenerationInfo)

	o.logger.Debug("completion generated",
		zap.String("model", o.config.Model),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)

	return &Result{Text: choice.Content, Usage: usage}, nil
}

func chatMessageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

// usageFromInfo harvests token counts from langchaingo's per-choice
// generation info. Backends that report nothing yield zero usage.
func usageFromInfo(info map[string]any) TokenUsage {
	return TokenUsage{
		PromptTokens:     intFromInfo(info, "PromptTokens"),
		CompletionTokens: intFromInfo(info, "CompletionTokens"),
		TotalTokens:      intFromInfo(info, "TotalTokens"),
	}
}

func intFromInfo(info map[string]any, key string) int {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
