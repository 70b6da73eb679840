package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type persistedMessage struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Text           string
}

type fakeStore struct {
	mu           sync.Mutex
	participants map[string][]string
	names        map[string]string
	persisted    []persistedMessage
	persistErr   error
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		participants: make(map[string][]string),
		names:        make(map[string]string),
	}
}

func (s *fakeStore) PersistMessage(_ context.Context, conversationID, senderID, senderName, text string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistErr != nil {
		return "", time.Time{}, s.persistErr
	}
	s.nextID++
	msg := persistedMessage{
		ID:             fmt.Sprintf("msg-%d", s.nextID),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Text:           text,
	}
	s.persisted = append(s.persisted, msg)
	return msg.ID, time.Now(), nil
}

func (s *fakeStore) GetParticipants(_ context.Context, conversationID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants, ok := s.participants[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return append([]string(nil), participants...), nil
}

func (s *fakeStore) GetDisplayName(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.names[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return name, nil
}

func (s *fakeStore) persistedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.persisted)
}

type fakeUnreadStore struct {
	mu       sync.Mutex
	counts   map[string]int64
	failFor  map[string]error
	setCalls int
}

func newFakeUnreadStore() *fakeUnreadStore {
	return &fakeUnreadStore{
		counts:  make(map[string]int64),
		failFor: make(map[string]error),
	}
}

func counterKey(conversationID, userID string) string {
	return conversationID + "/" + userID
}

func (s *fakeUnreadStore) IncrementUnread(_ context.Context, conversationID, userID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey(conversationID, userID)
	if err := s.failFor[key]; err != nil {
		return 0, err
	}
	s.counts[key] += delta
	return s.counts[key], nil
}

func (s *fakeUnreadStore) SetUnread(_ context.Context, conversationID, userID string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++
	s.counts[counterKey(conversationID, userID)] = value
	return nil
}

func (s *fakeUnreadStore) count(conversationID, userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[counterKey(conversationID, userID)]
}

// recordingConn implements presence.Conn and keeps every pushed frame.
type recordingConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
}

func newRecordingConn(id string) *recordingConn { return &recordingConn{id: id} }

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), frame...))
}

func (c *recordingConn) received(t *testing.T) []Frame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	frames := make([]Frame, 0, len(c.frames))
	for _, raw := range c.frames {
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		frames = append(frames, frame)
	}
	return frames
}

func (c *recordingConn) receivedOfType(t *testing.T, eventType string) []Frame {
	t.Helper()
	var matched []Frame
	for _, frame := range c.received(t) {
		if frame.Type == eventType {
			matched = append(matched, frame)
		}
	}
	return matched
}
