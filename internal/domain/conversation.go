package domain

import "github.com/google/uuid"

// Turn roles as they appear on the wire and in storage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the persisted transcript of one chat, keyed by its short ID.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt int64     `json:"createdAt"`
	Path      string    `json:"path"`
	Messages  []Turn    `json:"messages"`
}

const titleMaxLen = 100

// TitleFromFirstTurn derives the conversation title from the opening message.
func TitleFromFirstTurn(content string) string {
	if len(content) > titleMaxLen {
		return content[:titleMaxLen]
	}
	return content
}
