// Package ledger tracks the message history of logical conversations,
// independent of whether an agent process is currently running. Messages
// created before the remote session id is confirmed sit in a pending buffer
// and are promoted, in order and exactly once, when the agent's init message
// names the session.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a conversation's history.
type ChatMessage struct {
	ID        string    `db:"id"`
	Role      Role      `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// NewMessage builds a message with a fresh id and timestamp.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
