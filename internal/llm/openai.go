package llm

import (
	"context"
	"fmt"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// openaiClient streams completions from the OpenAI Responses API.
type openaiClient struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

func newOpenAIClient(cfg config.Config) *openaiClient {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &openaiClient{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
	}
}

func (c *openaiClient) StreamCompletion(ctx context.Context, messages []chat.Message) (Stream, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertInput(messages),
		},
		MaxOutputTokens: openai.Int(c.maxTokens),
	}

	stream := c.client.Responses.NewStreaming(ctx, params)

	// A transport or auth failure is recorded on the stream at creation;
	// surface it synchronously so the caller can fail before any response
	// bytes are committed.
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("open openai stream: %w", err)
	}

	return &openaiStream{stream: stream}, nil
}

func convertInput(messages []chat.Message) responses.ResponseInputParam {
	input := make(responses.ResponseInputParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleSystem))
		case chat.RoleUser:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleUser))
		case chat.RoleAssistant:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleAssistant))
		}
	}
	return input
}

// openaiStream filters the Responses event stream down to output-text
// deltas. The delta identifiers map onto the wire format one to one.
type openaiStream struct {
	stream  *ssestream.Stream[responses.ResponseStreamEventUnion]
	current DeltaEvent
}

func (s *openaiStream) Next() bool {
	for s.stream.Next() {
		event := s.stream.Current()
		delta, ok := event.AsAny().(responses.ResponseTextDeltaEvent)
		if !ok || delta.Delta == "" {
			continue
		}
		s.current = DeltaEvent{
			ItemID:       delta.ItemID,
			OutputIndex:  delta.OutputIndex,
			ContentIndex: delta.ContentIndex,
			Delta:        delta.Delta,
		}
		return true
	}
	return false
}

func (s *openaiStream) Current() DeltaEvent { return s.current }

func (s *openaiStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}

func (s *openaiStream) Close() error { return s.stream.Close() }
