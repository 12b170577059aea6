package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hubNopLogger struct{}

func (hubNopLogger) Debug(string, string, map[string]interface{}) {}
func (hubNopLogger) Info(string, string, map[string]interface{})  {}
func (hubNopLogger) Warn(string, string, map[string]interface{})  {}
func (hubNopLogger) Error(string, string, map[string]interface{}) {}
func (hubNopLogger) Sync() error                                  { return nil }

func registerClient(t *testing.T, h *Hub, room string, buffer int) *Client {
	t.Helper()
	c := &Client{
		Hub:     h,
		Room:    room,
		AgentID: uuid.New(),
		Send:    make(chan []byte, buffer),
	}
	h.register <- c
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, member := range h.rooms[room] {
			if member == c {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return c
}

// A client that stops draining its send buffer gets dropped from the room
// without taking the hub goroutine down with it.
func TestSlowClientIsDroppedAndHubSurvives(t *testing.T) {
	h := NewHub(nil, hubNopLogger{})
	go h.Run()

	room := uuid.New().String()
	slow := registerClient(t, h, room, 1)

	// First broadcast fills the one-slot buffer, the second overflows it and
	// triggers the drop path.
	h.BroadcastRoom(room, "DOOR_UPDATED", map[string]interface{}{"numero": "12"})
	h.BroadcastRoom(room, "DOOR_UPDATED", map[string]interface{}{"numero": "12"})

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.rooms[room]) == 0
	}, time.Second, 5*time.Millisecond)

	// The dropped client's channel ends up closed after its buffered backlog.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-slow.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// The hub goroutine is still serving: a fresh client joins the same room
	// and receives broadcasts.
	fresh := registerClient(t, h, room, 4)
	h.BroadcastRoom(room, "DOOR_UPDATED", map[string]interface{}{"numero": "14"})

	select {
	case msg := <-fresh.Send:
		assert.Contains(t, string(msg), "DOOR_UPDATED")
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping a slow client")
	}
}

// Two overflowing broadcasts may enqueue the same client for unregistration
// twice; the second pass must find nothing left to close.
func TestRepeatedDropOfSameClientIsNoOp(t *testing.T) {
	h := NewHub(nil, hubNopLogger{})
	go h.Run()

	room := uuid.New().String()
	slow := registerClient(t, h, room, 0)

	for i := 0; i < 3; i++ {
		h.BroadcastRoom(room, "DOOR_UPDATED", map[string]interface{}{"seq": i})
	}

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.rooms[room]) == 0
	}, time.Second, 5*time.Millisecond)

	_, ok := <-slow.Send
	assert.False(t, ok)
}
