// Package chat assembles role-tagged message lists for the upstream model.
package chat

// Role is a message role. The set is closed: system, user, assistant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IncomingMessage is a history entry as supplied by the client. Its role is
// an open string and is normalized at this boundary.
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole coerces a client-supplied role into the closed set: anything
// that is not exactly "user" becomes "assistant". Clients never author
// system messages.
func NormalizeRole(role string) Role {
	if role == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Format builds the ordered message list for one chat turn. The resolved
// instructions are always the single leading system message. With history
// present, the normalized history follows verbatim; the client owns
// appending the current prompt as the last history entry, so Format never
// re-appends it. Without history, the result is exactly the system message
// and one user message carrying prompt.
func Format(instructions string, history []IncomingMessage, prompt string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: instructions})

	if len(history) > 0 {
		for _, m := range history {
			messages = append(messages, Message{
				Role:    NormalizeRole(m.Role),
				Content: m.Content,
			})
		}
		return messages
	}

	return append(messages, Message{Role: RoleUser, Content: prompt})
}
