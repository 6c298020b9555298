package llm

import (
	"context"
	"fmt"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/config"
)

// Client opens streaming completion requests against an upstream model
// provider.
type Client interface {
	// StreamCompletion submits the message list and returns a delta stream.
	// Failure to establish the stream is returned synchronously; failures
	// during iteration surface through Stream.Err.
	StreamCompletion(ctx context.Context, messages []chat.Message) (Stream, error)
}

// NewClient creates a client for the configured provider.
func NewClient(cfg config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return newOpenAIClient(cfg), nil

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		return newAnthropicClient(cfg), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// splitSystem separates the leading system message from the conversational
// remainder. The formatter guarantees the system message is first.
func splitSystem(messages []chat.Message) (system string, rest []chat.Message) {
	if len(messages) > 0 && messages[0].Role == chat.RoleSystem {
		return messages[0].Content, messages[1:]
	}
	return "", messages
}
