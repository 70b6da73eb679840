package chat

import (
	"context"
	"time"
)

// Message is immutable once created. The ID and timestamp are assigned by the
// store before any fan-out happens, so the live view and history never diverge.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderDisplayName"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"timestamp"`
}

// MessageStore is the durable collaborator behind message submit.
type MessageStore interface {
	// PersistMessage writes the message and returns its durable id and
	// timestamp. It also refreshes the conversation's last-message preview.
	PersistMessage(ctx context.Context, conversationID, senderID, senderName, text string) (id string, createdAt time.Time, err error)

	// GetParticipants returns the conversation's participant user ids in
	// join order. ErrConversationNotFound if the conversation does not exist.
	GetParticipants(ctx context.Context, conversationID string) ([]string, error)

	// GetDisplayName resolves a user id to its display name.
	// ErrUserNotFound if the user does not exist.
	GetDisplayName(ctx context.Context, userID string) (string, error)
}

// UnreadStore is the durable collaborator behind per-recipient unread
// counters. IncrementUnread must be atomic on (conversation, user) and return
// the post-increment value; that value, not a re-read snapshot, is what gets
// pushed to clients.
type UnreadStore interface {
	IncrementUnread(ctx context.Context, conversationID, userID string, delta int64) (int64, error)
	SetUnread(ctx context.Context, conversationID, userID string, value int64) error
}
