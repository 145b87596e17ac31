package room

import (
	"log/slog"
	"sync"
)

// Hub tracks which clients are subscribed to which rooms and fans payloads
// out to room members. Rooms are plain strings ("desk:5", "kitchen"); a room
// exists exactly as long as it has members.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
	log   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		log:   log,
	}
}

// Join subscribes a client to a room. Joining the same room twice is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true

	h.log.Debug("client joined room", "room", room, "client_id", c.ID, "members", len(members))
}

// Leave unsubscribes a client from a room. Empty rooms are dropped.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// LeaveAll removes a client from every room and closes its outbound queue.
// Call exactly once when the connection goes away.
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		if members[c] {
			h.leaveLocked(room, c)
		}
	}
	c.Close()
}

func (h *Hub) leaveLocked(room string, c *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Publish sends a payload to every member of a room except the client with
// the given ID. Pass an empty exceptID to reach everyone. Clients whose
// outbound queue is full are dropped from the hub.
func (h *Hub) Publish(room string, exceptID string, payload []byte) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[room] {
		if c.ID == exceptID {
			continue
		}
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow websocket client", "room", room, "client_id", c.ID)
		h.LeaveAll(c)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// RoomSize returns the current number of members in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
