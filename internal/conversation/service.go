package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linkspace/internal/auth"
	"linkspace/internal/cache"
	"linkspace/internal/chat"
	"linkspace/internal/database"
	"linkspace/internal/presence"
)

var (
	ErrInviteCodeNotFound = errors.New("no user or group with this invite code")
	ErrSelfInvite         = errors.New("you can't add yourself")
	ErrAlreadyConnected   = errors.New("you are already connected")
	ErrNotFound           = errors.New("conversation not found")
	ErrNotAParticipant    = errors.New("not a participant of this conversation")
)

const connectedGreeting = "You are now connected!"

// View is a conversation as one specific user sees it: private conversations
// take the other participant's name, groups carry their own.
type View struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	InviteCode    string    `json:"inviteCode,omitempty"`
	Participants  []string  `json:"participants"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageTimestamp"`
	UnreadCount   int64     `json:"unreadCount"`
}

type Service struct {
	db       *database.Database
	counters *cache.RedisCache
	registry *presence.Registry
	messages *chat.Repository
	unread   *chat.UnreadCoordinator
}

func NewService(db *database.Database, counters *cache.RedisCache, registry *presence.Registry, messages *chat.Repository, unread *chat.UnreadCoordinator) *Service {
	return &Service{
		db:       db,
		counters: counters,
		registry: registry,
		messages: messages,
		unread:   unread,
	}
}

// AddFriend connects the caller with the owner of inviteCode by creating
// their private conversation. The new friend's live connections are told
// about it immediately.
func (s *Service) AddFriend(ctx context.Context, userID, inviteCode string) (*View, error) {
	var friend database.User
	err := s.db.WithContext(ctx).First(&friend, "invite_code = ?", strings.ToUpper(strings.TrimSpace(inviteCode))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find invite code: %w", err)
	}
	if friend.ID == userID {
		return nil, ErrSelfInvite
	}

	exists, err := s.privateConversationExists(ctx, userID, friend.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyConnected
	}

	now := time.Now().UTC()
	record := &database.Conversation{
		ID:            uuid.New().String(),
		Type:          database.ConversationTypePrivate,
		LastMessage:   connectedGreeting,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		members := []database.Participant{
			{ConversationID: record.ID, UserID: userID, JoinedAt: now},
			{ConversationID: record.ID, UserID: friend.ID, JoinedAt: now},
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	// The greeting counts as unread on the invited side only.
	if err := s.counters.SetUnread(ctx, record.ID, friend.ID, 1); err != nil {
		log.Printf("conversation: seed unread for %s: %v", friend.ID, err)
	}

	s.notify(friend.ID, record, []string{userID, friend.ID})

	return s.view(ctx, userID, record, []string{userID, friend.ID})
}

// CreateGroup starts a group conversation with its own shareable invite code.
func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	code, err := auth.GenerateInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &database.Conversation{
		ID:            uuid.New().String(),
		Type:          database.ConversationTypeGroup,
		Name:          name,
		InviteCode:    code,
		LastMessage:   "Group created",
		LastMessageAt: now,
		CreatedAt:     now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Create(&database.Participant{
			ConversationID: record.ID,
			UserID:         userID,
			JoinedAt:       now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	return s.view(ctx, userID, record, []string{userID})
}

// JoinGroup adds the caller to the group behind inviteCode and refreshes the
// existing members' conversation lists over their live connections.
func (s *Service) JoinGroup(ctx context.Context, userID, inviteCode string) (*View, error) {
	var record database.Conversation
	err := s.db.WithContext(ctx).
		First(&record, "invite_code = ? AND type = ?", strings.ToUpper(strings.TrimSpace(inviteCode)), database.ConversationTypeGroup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}

	members, err := s.participantIDs(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if member == userID {
			return nil, ErrAlreadyConnected
		}
	}

	err = s.db.WithContext(ctx).Create(&database.Participant{
		ConversationID: record.ID,
		UserID:         userID,
		JoinedAt:       time.Now().UTC(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}
	members = append(members, userID)

	for _, member := range members {
		if member != userID {
			s.notify(member, &record, members)
		}
	}

	return s.view(ctx, userID, &record, members)
}

// List returns the caller's conversations, newest activity first, with the
// unread counters resolved from the counter store.
func (s *Service) List(ctx context.Context, userID string) ([]*View, error) {
	var memberships []database.Participant
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []*View{}, nil
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ConversationID)
	}

	var records []database.Conversation
	err = s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("last_message_at desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	views := make([]*View, 0, len(records))
	for i := range records {
		record := &records[i]
		members, err := s.participantIDs(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		view, err := s.view(ctx, userID, record, members)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// History returns the conversation's messages for a participant.
func (s *Service) History(ctx context.Context, userID, conversationID string) ([]chat.Message, error) {
	if err := s.requireParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messages.History(ctx, conversationID)
}

// MarkRead zeroes the caller's unread counter for the conversation.
func (s *Service) MarkRead(ctx context.Context, userID, conversationID string) error {
	if err := s.requireParticipant(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.unread.MarkRead(ctx, conversationID, userID)
}

func (s *Service) requireParticipant(ctx context.Context, userID, conversationID string) error {
	members, err := s.participantIDs(ctx, conversationID)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member == userID {
			return nil
		}
	}
	return ErrNotAParticipant
}

func (s *Service) participantIDs(ctx context.Context, conversationID string) ([]string, error) {
	var participants []database.Participant
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at asc").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, ErrNotFound
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

func (s *Service) privateConversationExists(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM conversations c
		JOIN conversation_participants pa ON pa.conversation_id = c.id AND pa.user_id = ?
		JOIN conversation_participants pb ON pb.conversation_id = c.id AND pb.user_id = ?
		WHERE c.type = ?`, a, b, database.ConversationTypePrivate).
		Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("check existing conversation: %w", err)
	}
	return count > 0, nil
}

// view renders the conversation for one user's eyes.
func (s *Service) view(ctx context.Context, userID string, record *database.Conversation, members []string) (*View, error) {
	view := &View{
		ID:            record.ID,
		Type:          record.Type,
		Name:          record.Name,
		Participants:  members,
		LastMessage:   record.LastMessage,
		LastMessageAt: record.LastMessageAt,
	}
	if record.Type == database.ConversationTypeGroup {
		view.InviteCode = record.InviteCode
	}

	if record.Type == database.ConversationTypePrivate {
		for _, member := range members {
			if member == userID {
				continue
			}
			var other database.User
			if err := s.db.WithContext(ctx).First(&other, "id = ?", member).Error; err != nil {
				return nil, fmt.Errorf("resolve participant: %w", err)
			}
			view.Name = other.Username
			break
		}
	}
	view.Avatar = avatarFor(view.Name)

	count, err := s.counters.UnreadFor(ctx, record.ID, userID)
	if err != nil {
		log.Printf("conversation: unread for %s in %s: %v", userID, record.ID, err)
	}
	view.UnreadCount = count

	return view, nil
}

// notify pushes a newConversation event, rendered from the recipient's
// perspective, to each of the recipient's live connections. Offline
// recipients pick the conversation up from their next list fetch.
func (s *Service) notify(recipientID string, record *database.Conversation, members []string) {
	conns := s.registry.ConnectionsFor(recipientID)
	if len(conns) == 0 {
		return
	}

	view, err := s.view(context.Background(), recipientID, record, members)
	if err != nil {
		log.Printf("conversation: render view for %s: %v", recipientID, err)
		return
	}
	frame, err := chat.EncodeFrame(chat.EventNewConversation, view)
	if err != nil {
		log.Printf("conversation: encode notification: %v", err)
		return
	}
	for _, conn := range conns {
		conn.Send(frame)
	}
}

func avatarFor(name string) string {
	initial := "?"
	if name != "" {
		initial = strings.ToUpper(name[:1])
	}
	return "https://placehold.co/100x100/6366f1/ffffff?text=" + initial
}
