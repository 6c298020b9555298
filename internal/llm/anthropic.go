package llm

import (
	"context"
	"fmt"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/config"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// anthropicClient streams completions from the Anthropic Messages API.
type anthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicClient(cfg config.Config) *anthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	return &anthropicClient{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
	}
}

func (c *anthropicClient) StreamCompletion(ctx context.Context, messages []chat.Message) (Stream, error) {
	system, rest := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  convertMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("open anthropic stream: %w", err)
	}

	return &anthropicStream{stream: stream}, nil
}

func convertMessages(messages []chat.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleUser:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case chat.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return result
}

// anthropicStream filters the message event stream down to text deltas. The
// Messages API has no item/content identifiers of its own, so the message ID
// and content-block index stand in for them.
type anthropicStream struct {
	stream    *ssestream.Stream[anthropic.MessageStreamEventUnion]
	current   DeltaEvent
	messageID string
}

func (s *anthropicStream) Next() bool {
	for s.stream.Next() {
		switch event := s.stream.Current().AsAny().(type) {
		case anthropic.MessageStartEvent:
			s.messageID = event.Message.ID
		case anthropic.ContentBlockDeltaEvent:
			delta, ok := event.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			s.current = DeltaEvent{
				ItemID:       s.messageID,
				OutputIndex:  0,
				ContentIndex: event.Index,
				Delta:        delta.Text,
			}
			return true
		}
	}
	return false
}

func (s *anthropicStream) Current() DeltaEvent { return s.current }

func (s *anthropicStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}
	return nil
}

func (s *anthropicStream) Close() error { return s.stream.Close() }
