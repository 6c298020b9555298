package llm

import (
	"testing"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("openai requires key", func(t *testing.T) {
		_, err := NewClient(config.Config{Provider: config.ProviderOpenAI})
		assert.ErrorContains(t, err, "OpenAI API key required")
	})

	t.Run("anthropic requires key", func(t *testing.T) {
		_, err := NewClient(config.Config{Provider: config.ProviderAnthropic})
		assert.ErrorContains(t, err, "Anthropic API key required")
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := NewClient(config.Config{Provider: "bedrock"})
		assert.ErrorContains(t, err, "unsupported provider")
	})

	t.Run("openai", func(t *testing.T) {
		client, err := NewClient(config.Config{
			Provider:     config.ProviderOpenAI,
			Model:        "gpt-4o",
			OpenAIAPIKey: "sk-test",
		})
		require.NoError(t, err)
		assert.IsType(t, &openaiClient{}, client)
	})

	t.Run("anthropic", func(t *testing.T) {
		client, err := NewClient(config.Config{
			Provider:        config.ProviderAnthropic,
			Model:           "claude-sonnet-4-5",
			AnthropicAPIKey: "sk-ant-test",
		})
		require.NoError(t, err)
		assert.IsType(t, &anthropicClient{}, client)
	})
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]chat.Message{
		{Role: chat.RoleSystem, Content: "be brief"},
		{Role: chat.RoleUser, Content: "hi"},
	})
	assert.Equal(t, "be brief", system)
	require.Len(t, rest, 1)
	assert.Equal(t, chat.RoleUser, rest[0].Role)

	system, rest = splitSystem([]chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
	})
	assert.Empty(t, system)
	assert.Len(t, rest, 1)

	system, rest = splitSystem(nil)
	assert.Empty(t, system)
	assert.Empty(t, rest)
}
