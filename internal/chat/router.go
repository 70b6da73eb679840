package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"linkspace/internal/presence"
)

// Router fans a newly submitted message out to every live connection of every
// recipient and hands the recipient list to the unread coordinator.
//
// Submit is all-or-nothing up to the persistence write: any failure before or
// during the write surfaces to the sender and leaves no state behind. After a
// successful write, delivery is best-effort per connection and counters always
// move, so the durable view never shows a message its counters do not know.
type Router struct {
	store    MessageStore
	registry *presence.Registry
	unread   *UnreadCoordinator
	timeout  time.Duration
}

func NewRouter(store MessageStore, registry *presence.Registry, unread *UnreadCoordinator, timeout time.Duration) *Router {
	return &Router{
		store:    store,
		registry: registry,
		unread:   unread,
		timeout:  timeout,
	}
}

// Submit validates, persists, and fans out one message from senderID.
// The participant snapshot is read from the store on every call; the client
// payload is never trusted for membership.
func (r *Router) Submit(ctx context.Context, senderID, conversationID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	participants, err := r.getParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !contains(participants, senderID) {
		return nil, ErrNotAParticipant
	}

	senderName, err := r.getDisplayName(ctx, senderID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	id, createdAt, err := r.store.PersistMessage(callCtx, conversationID, senderID, senderName, text)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg := &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Text:           text,
		CreatedAt:      createdAt,
	}

	recipients := make([]string, 0, len(participants)-1)
	for _, userID := range participants {
		if userID != senderID {
			recipients = append(recipients, userID)
		}
	}

	r.deliver(msg, recipients)
	r.unread.IncrementFor(ctx, conversationID, recipients)

	return msg, nil
}

// deliver pushes the message to every live connection of every recipient.
// An offline recipient is not an error; it simply gets no live delivery and
// catches up through history.
func (r *Router) deliver(msg *Message, recipients []string) {
	frame, err := EncodeFrame(EventNewMessage, msg)
	if err != nil {
		log.Printf("router: encode message %s: %v", msg.ID, err)
		return
	}
	for _, userID := range recipients {
		for _, conn := range r.registry.ConnectionsFor(userID) {
			conn.Send(frame)
		}
	}
}

func (r *Router) getParticipants(ctx context.Context, conversationID string) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	participants, err := r.store.GetParticipants(callCtx, conversationID)
	if errors.Is(err, ErrConversationNotFound) {
		return nil, ErrNotAParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return participants, nil
}

func (r *Router) getDisplayName(ctx context.Context, senderID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name, err := r.store.GetDisplayName(callCtx, senderID)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrUnknownSender
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return name, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
