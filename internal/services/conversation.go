package services

import (
	"strings"

	"statdesk/internal/provider"
)

// IncomingMessage is one raw dialogue turn as posted by a client.
// Older clients send the text under "text" instead of "content".
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

// Normalize converts raw client messages into provider turns. Turns
// without usable text are dropped, not replaced with placeholders;
// any role other than "assistant" collapses to "user". Order is
// preserved.
func Normalize(messages []IncomingMessage) []provider.Turn {
	turns := make([]provider.Turn, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			content = strings.TrimSpace(msg.Text)
		}
		if content == "" {
			continue
		}

		role := provider.RoleUser
		if msg.Role == provider.RoleAssistant {
			role = provider.RoleAssistant
		}

		turns = append(turns, provider.Turn{Role: role, Content: content})
	}
	return turns
}
