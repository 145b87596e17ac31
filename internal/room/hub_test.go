package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JossueJativa/websocket/pkg/logger"
)

func testClient() *Client {
	return &Client{
		ID:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
	}
}

func newTestHub() *Hub {
	return NewHub(logger.New("deskorder-test", "error"))
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("expected a queued payload")
		return nil
	}
}

func TestHub_JoinAndPublish(t *testing.T) {
	hub := newTestHub()
	a := testClient()
	b := testClient()

	hub.Join("desk:1", a)
	hub.Join("desk:1", b)

	hub.Publish("desk:1", "", []byte("hello"))

	assert.Equal(t, []byte("hello"), receive(t, a))
	assert.Equal(t, []byte("hello"), receive(t, b))
}

func TestHub_PublishExcludesSender(t *testing.T) {
	hub := newTestHub()
	a := testClient()
	b := testClient()

	hub.Join("desk:1", a)
	hub.Join("desk:1", b)

	hub.Publish("desk:1", a.ID, []byte("update"))

	assert.Empty(t, a.send, "initiator must not receive its own broadcast")
	assert.Equal(t, []byte("update"), receive(t, b))
}

func TestHub_PublishIsRoomScoped(t *testing.T) {
	hub := newTestHub()
	a := testClient()
	b := testClient()

	hub.Join("desk:1", a)
	hub.Join("desk:2", b)

	hub.Publish("desk:1", "", []byte("update"))

	assert.Equal(t, []byte("update"), receive(t, a))
	assert.Empty(t, b.send, "other desks must not receive the broadcast")
}

func TestHub_PublishToEmptyRoom(t *testing.T) {
	hub := newTestHub()
	assert.NotPanics(t, func() {
		hub.Publish("desk:404", "", []byte("nobody home"))
	})
}

func TestHub_JoinTwiceIsNoOp(t *testing.T) {
	hub := newTestHub()
	a := testClient()

	hub.Join("desk:1", a)
	hub.Join("desk:1", a)

	require.Equal(t, 1, hub.RoomSize("desk:1"))

	hub.Publish("desk:1", "", []byte("once"))
	receive(t, a)
	assert.Empty(t, a.send, "duplicate membership must not duplicate delivery")
}

func TestHub_Leave(t *testing.T) {
	hub := newTestHub()
	a := testClient()

	hub.Join("desk:1", a)
	hub.Leave("desk:1", a)

	assert.Equal(t, 0, hub.RoomSize("desk:1"))

	hub.Publish("desk:1", "", []byte("gone"))
	assert.Empty(t, a.send)
}

func TestHub_LeaveAll(t *testing.T) {
	hub := newTestHub()
	a := testClient()

	hub.Join("desk:1", a)
	hub.Join("kitchen", a)

	hub.LeaveAll(a)

	assert.Equal(t, 0, hub.RoomSize("desk:1"))
	assert.Equal(t, 0, hub.RoomSize("kitchen"))

	_, open := <-a.send
	assert.False(t, open, "send queue must be closed after LeaveAll")
}

func TestHub_LeaveAllTwiceDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	a := testClient()

	hub.Join("desk:1", a)

	assert.NotPanics(t, func() {
		hub.LeaveAll(a)
		hub.LeaveAll(a)
	})
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := newTestHub()
	slow := testClient()
	fast := testClient()

	hub.Join("desk:1", slow)
	hub.Join("desk:1", fast)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.enqueue([]byte("fill")))
	}

	hub.Publish("desk:1", "", []byte("overflow"))

	assert.Equal(t, 1, hub.RoomSize("desk:1"), "slow client must be removed")

	// The fast client still got the payload.
	assert.Len(t, fast.send, 1)
	assert.Equal(t, []byte("overflow"), receive(t, fast))
}

func TestHub_SendAfterEvictionDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	slow := testClient()

	hub.Join("desk:1", slow)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.enqueue([]byte("fill")))
	}

	// Eviction closes the queue; the connection's reader goroutine may still
	// be acking a request at that moment.
	hub.Publish("desk:1", "", []byte("overflow"))

	assert.NotPanics(t, func() {
		assert.False(t, slow.Send([]byte("late ack")), "a closed client must refuse the payload")
	})
}
