package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"linkspace/internal/chat"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound frames queued per connection before it is considered stuck
	sendBufferSize = 256
)

// Client is a single websocket connection. It starts anonymous and becomes
// bound to a user once the gateway processes an identify frame; a closed
// connection is never reused.
type Client struct {
	id      string
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
}

func newClient(gateway *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		id:      uuid.New().String(),
		gateway: gateway,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues a frame for delivery. It never blocks: a client that cannot
// drain its buffer gets its connection dropped, which in turn unbinds it.
func (c *Client) Send(frame []byte) {
	select {
	case c.send <- frame:
	default:
		_ = c.conn.Close()
	}
}

// readPump processes inbound frames strictly in arrival order, which is what
// gives a single connection its single logical event stream.
func (c *Client) readPump() {
	defer func() {
		c.gateway.Disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var frame chat.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		c.gateway.Dispatch(c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
