package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"linkspace/internal/chat"
	"linkspace/internal/presence"
)

// Gateway owns the lifecycle of every websocket connection: it binds
// identified connections into the presence registry, broadcasts the online
// snapshot when the online set changes, tracks per-conversation delivery
// groups, and dispatches chat traffic to the fan-out router.
type Gateway struct {
	registry *presence.Registry
	router   *chat.Router
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	groups map[string]map[string]presence.Conn // conversation ID -> conn ID -> conn
	joined map[string][]string                 // conn ID -> conversation IDs, for cleanup
}

func NewGateway(registry *presence.Registry, router *chat.Router) *Gateway {
	return &Gateway{
		registry: registry,
		router:   router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via the identify frame, not the handshake.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		groups: make(map[string]map[string]presence.Conn),
		joined: make(map[string][]string),
	}
}

// HandleWebSocket upgrades the HTTP request and runs the connection's pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	client := newClient(g, conn)
	go client.writePump()
	go client.readPump()
}

// Dispatch routes one inbound frame. Anonymous connections may only identify;
// chat traffic on an unbound connection is answered with an error frame.
func (g *Gateway) Dispatch(conn presence.Conn, frame chat.Frame) {
	switch frame.Type {
	case chat.EventIdentify:
		var payload chat.IdentifyPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return
		}
		g.Identify(conn, payload.UserID)

	case chat.EventJoinConversation:
		var payload chat.JoinConversationPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return
		}
		g.Join(conn, payload.ConversationID)

	case chat.EventSendMessage:
		var payload chat.SendMessagePayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return
		}
		g.Submit(conn, payload.ConversationID, payload.Text)
	}
}

// Identify binds the connection to a user. If the user just came online the
// updated snapshot goes to every bound connection; either way the newly bound
// connection receives the current snapshot for its own view.
func (g *Gateway) Identify(conn presence.Conn, userID string) {
	if userID == "" {
		return
	}

	first := g.registry.Bind(userID, conn)
	if first {
		g.broadcastOnline()
		return
	}
	g.sendOnline(conn)
}

// Join adds a bound connection to a conversation's delivery group. Groups are
// a routing aid, not an authority: fan-out resolves recipients through the
// registry regardless.
func (g *Gateway) Join(conn presence.Conn, conversationID string) {
	if conversationID == "" {
		return
	}
	if _, bound := g.registry.UserOf(conn.ID()); !bound {
		g.sendError(conn, "identify required")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	group := g.groups[conversationID]
	if group == nil {
		group = make(map[string]presence.Conn)
		g.groups[conversationID] = group
	}
	if _, ok := group[conn.ID()]; ok {
		return
	}
	group[conn.ID()] = conn
	g.joined[conn.ID()] = append(g.joined[conn.ID()], conversationID)
}

// Submit forwards a send request to the router under the connection's bound
// identity. The persisted message is acked back to the submitting connection,
// and echoed to the sender's other connections in the conversation group so
// multi-device senders stay in sync.
func (g *Gateway) Submit(conn presence.Conn, conversationID, text string) {
	senderID, bound := g.registry.UserOf(conn.ID())
	if !bound {
		g.sendError(conn, "identify required")
		return
	}

	msg, err := g.router.Submit(context.Background(), senderID, conversationID, text)
	if err != nil {
		g.sendError(conn, submitErrorMessage(err))
		return
	}

	if frame, err := chat.EncodeFrame(chat.EventMessageSent, msg); err == nil {
		conn.Send(frame)
	}
	g.echoToSenderDevices(conn, senderID, msg)
}

// Disconnect finalizes a closed connection: leaves all groups, unbinds, and
// broadcasts the shrunken online set if this was the user's last connection.
// Safe to call for connections that never identified.
func (g *Gateway) Disconnect(conn presence.Conn) {
	g.leaveAll(conn)
	userID, last := g.registry.Unbind(conn.ID())
	if userID != "" && last {
		g.broadcastOnline()
	}
}

func (g *Gateway) leaveAll(conn presence.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, conversationID := range g.joined[conn.ID()] {
		if group := g.groups[conversationID]; group != nil {
			delete(group, conn.ID())
			if len(group) == 0 {
				delete(g.groups, conversationID)
			}
		}
	}
	delete(g.joined, conn.ID())
}

func (g *Gateway) echoToSenderDevices(origin presence.Conn, senderID string, msg *chat.Message) {
	frame, err := chat.EncodeFrame(chat.EventNewMessage, msg)
	if err != nil {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for connID, peer := range g.groups[msg.ConversationID] {
		if connID == origin.ID() {
			continue
		}
		if userID, _ := g.registry.UserOf(connID); userID == senderID {
			peer.Send(frame)
		}
	}
}

func (g *Gateway) broadcastOnline() {
	frame, err := chat.EncodeFrame(chat.EventOnlineUsers, g.registry.OnlineUsers())
	if err != nil {
		log.Printf("ws: encode online snapshot: %v", err)
		return
	}
	for _, conn := range g.registry.Connections() {
		conn.Send(frame)
	}
}

func (g *Gateway) sendOnline(conn presence.Conn) {
	frame, err := chat.EncodeFrame(chat.EventOnlineUsers, g.registry.OnlineUsers())
	if err != nil {
		return
	}
	conn.Send(frame)
}

func (g *Gateway) sendError(conn presence.Conn, message string) {
	frame, err := chat.EncodeFrame(chat.EventError, chat.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	conn.Send(frame)
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return "message text is empty"
	case errors.Is(err, chat.ErrNotAParticipant):
		return "not a participant of this conversation"
	default:
		// Integrity and persistence failures surface as a generic error.
		return "failed to send message"
	}
}
