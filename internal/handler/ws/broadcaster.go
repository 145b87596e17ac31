package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/JossueJativa/websocket/internal/room"
)

// HubBroadcaster adapts the room hub to the service's Broadcaster contract,
// wrapping payloads in the wire envelope.
type HubBroadcaster struct {
	hub *room.Hub
	log *slog.Logger
}

// NewHubBroadcaster creates a broadcaster publishing through the given hub.
func NewHubBroadcaster(hub *room.Hub, log *slog.Logger) *HubBroadcaster {
	return &HubBroadcaster{hub: hub, log: log}
}

// Broadcast marshals the event into a wire frame and fans it out to the room,
// skipping the client with the given ID.
func (b *HubBroadcaster) Broadcast(roomName, exceptID, eventName string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		b.log.Error("failed to marshal broadcast payload",
			slog.String("room", roomName),
			slog.String("event", eventName),
			slog.String("error", err.Error()),
		)
		return
	}

	frame, err := json.Marshal(Envelope{Event: eventName, Data: raw})
	if err != nil {
		b.log.Error("failed to marshal broadcast frame",
			slog.String("room", roomName),
			slog.String("event", eventName),
			slog.String("error", err.Error()),
		)
		return
	}

	b.hub.Publish(roomName, exceptID, frame)
}
