package database

import "time"

const (
	ConversationTypePrivate = "private"
	ConversationTypeGroup   = "group"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	InviteCode   string `gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time
}

type Conversation struct {
	ID   string `gorm:"primaryKey"`
	Type string `gorm:"not null"`

	// Group-only fields. Private conversations derive their display name
	// from the other participant at read time.
	Name       string
	InviteCode string `gorm:"index"`

	LastMessage   string
	LastMessageAt time.Time
	CreatedAt     time.Time
}

type Participant struct {
	ConversationID string `gorm:"primaryKey"`
	UserID         string `gorm:"primaryKey;index"`
	JoinedAt       time.Time
}

func (Participant) TableName() string {
	return "conversation_participants"
}

// Message rows are immutable once written.
type Message struct {
	ID             string `gorm:"primaryKey"`
	ConversationID string `gorm:"index;not null"`
	SenderID       string `gorm:"not null"`
	SenderName     string `gorm:"not null"`
	Text           string `gorm:"not null"`
	CreatedAt      time.Time
}
