package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWithoutHistory(t *testing.T) {
	got := Format("you are a tutor", nil, "hi")

	require.Len(t, got, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: "you are a tutor"}, got[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, got[1])
}

func TestFormatEmptyHistoryEqualsNoHistory(t *testing.T) {
	got := Format("sys", []IncomingMessage{}, "hi")

	require.Len(t, got, 2)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, got[1])
}

func TestFormatWithHistory(t *testing.T) {
	history := []IncomingMessage{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
		{Role: "user", Content: "c"},
	}

	got := Format("sys", history, "c")

	// System first, then the history verbatim. The prompt "c" is already the
	// last history entry and must not be appended a second time.
	require.Len(t, got, 4)
	assert.Equal(t, Message{Role: RoleSystem, Content: "sys"}, got[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "a"}, got[1])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "b"}, got[2])
	assert.Equal(t, Message{Role: RoleUser, Content: "c"}, got[3])
}

func TestFormatNormalizesUnknownRoles(t *testing.T) {
	history := []IncomingMessage{
		{Role: "system", Content: "sneaky"},
		{Role: "tool", Content: "output"},
		{Role: "", Content: "blank"},
		{Role: "user", Content: "fine"},
	}

	got := Format("sys", history, "fine")

	require.Len(t, got, 5)
	// Exactly one system message, and it is the leading one.
	for i, m := range got[1:] {
		assert.NotEqual(t, RoleSystem, m.Role, "message %d", i+1)
	}
	assert.Equal(t, RoleAssistant, got[1].Role)
	assert.Equal(t, RoleAssistant, got[2].Role)
	assert.Equal(t, RoleAssistant, got[3].Role)
	assert.Equal(t, RoleUser, got[4].Role)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleUser, NormalizeRole("user"))
	assert.Equal(t, RoleAssistant, NormalizeRole("assistant"))
	assert.Equal(t, RoleAssistant, NormalizeRole("system"))
	assert.Equal(t, RoleAssistant, NormalizeRole("USER"))
	assert.Equal(t, RoleAssistant, NormalizeRole(""))
}
