package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. Pings are sent at a fraction of this interval.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-client outbound queue. A client that cannot
	// drain this many messages is disconnected.
	sendBuffer = 64
)

// Client is a single WebSocket connection tracked by the hub.
type Client struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient wraps a WebSocket connection with a unique identity and an
// outbound queue.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Send places a payload on the outbound queue without blocking. It reports
// false when the queue is full.
func (c *Client) Send(payload []byte) bool {
	return c.enqueue(payload)
}

// enqueue places a payload on the outbound queue without blocking. It reports
// false when the queue is full or already closed. The mutex keeps the check
// and the send atomic with respect to Close, so a reader goroutine acking a
// request can race the hub evicting the same client without panicking.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue, which makes WritePump send a close frame
// and return. Safe to call more than once; enqueues after Close report false.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump drains the outbound queue onto the connection and keeps it alive
// with periodic pings. It returns when the queue is closed or a write fails.
// Run it in its own goroutine; it is the only writer on the connection.
func (c *Client) WritePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug("websocket write failed", "client_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
