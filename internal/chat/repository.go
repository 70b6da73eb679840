package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linkspace/internal/database"
)

// Repository is the Postgres-backed MessageStore.
type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) PersistMessage(ctx context.Context, conversationID, senderID, senderName, text string) (string, time.Time, error) {
	message := &database.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&database.Conversation{}).
			Where("id = ?", conversationID).
			Updates(map[string]interface{}{
				"last_message":    text,
				"last_message_at": message.CreatedAt,
			}).Error
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("persist message: %w", err)
	}

	return message.ID, message.CreatedAt, nil
}

func (r *Repository) GetParticipants(ctx context.Context, conversationID string) ([]string, error) {
	var participants []database.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at asc").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("get participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, ErrConversationNotFound
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	return userIDs, nil
}

func (r *Repository) GetDisplayName(ctx context.Context, userID string) (string, error) {
	var user database.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get display name: %w", err)
	}
	return user.Username, nil
}

// History returns the conversation's messages in creation order. Backlog is
// always fetched this way; messages are never replayed over the socket.
func (r *Repository) History(ctx context.Context, conversationID string) ([]Message, error) {
	var rows []database.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, Message{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			SenderID:       row.SenderID,
			SenderName:     row.SenderName,
			Text:           row.Text,
			CreatedAt:      row.CreatedAt,
		})
	}
	return messages, nil
}
