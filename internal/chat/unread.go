package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"linkspace/internal/presence"
)

// UnreadCoordinator keeps the durable per-recipient unread counters in step
// with message delivery and pushes the resulting values to live connections.
// Counters mean "not yet marked read": they move for every recipient of every
// message, whether or not that recipient saw the message live.
type UnreadCoordinator struct {
	store    UnreadStore
	registry *presence.Registry
	timeout  time.Duration
}

func NewUnreadCoordinator(store UnreadStore, registry *presence.Registry, timeout time.Duration) *UnreadCoordinator {
	return &UnreadCoordinator{
		store:    store,
		registry: registry,
		timeout:  timeout,
	}
}

// IncrementFor bumps each recipient's counter by one and notifies that
// recipient's live connections with the new value. A failed increment for one
// recipient never blocks the others.
func (c *UnreadCoordinator) IncrementFor(ctx context.Context, conversationID string, recipients []string) {
	for _, userID := range recipients {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		count, err := c.store.IncrementUnread(callCtx, conversationID, userID, 1)
		cancel()
		if err != nil {
			log.Printf("unread: increment for user %s in conversation %s: %v", userID, conversationID, err)
			continue
		}
		c.push(conversationID, userID, count)
	}
}

// MarkRead resets the user's counter for the conversation to zero. Idempotent.
func (c *UnreadCoordinator) MarkRead(ctx context.Context, conversationID, userID string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.store.SetUnread(callCtx, conversationID, userID, 0); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	// Tell the user's other devices the badge is gone.
	c.push(conversationID, userID, 0)
	return nil
}

func (c *UnreadCoordinator) push(conversationID, userID string, count int64) {
	frame, err := EncodeFrame(EventUpdateUnreadCount, UnreadCountPayload{
		ConversationID: conversationID,
		Count:          count,
	})
	if err != nil {
		log.Printf("unread: encode frame: %v", err)
		return
	}
	for _, conn := range c.registry.ConnectionsFor(userID) {
		conn.Send(frame)
	}
}
