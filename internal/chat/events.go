package chat

import "encoding/json"

// Wire-level event names. These are a stable contract with the web client.
const (
	// Inbound (client -> server)
	EventIdentify         = "identify"
	EventJoinConversation = "joinConversation"
	EventSendMessage      = "sendMessage"

	// Outbound (server -> client)
	EventOnlineUsers       = "onlineUsers"
	EventNewMessage        = "newMessage"
	EventMessageSent       = "messageSent"
	EventUpdateUnreadCount = "updateUnreadCount"
	EventNewConversation   = "newConversation"
	EventError             = "error"
)

// Frame is the envelope every websocket message travels in, both directions.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func EncodeFrame(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: eventType, Payload: raw})
}

type IdentifyPayload struct {
	UserID string `json:"userId"`
}

type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type UnreadCountPayload struct {
	ConversationID string `json:"conversationId"`
	Count          int64  `json:"count"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
