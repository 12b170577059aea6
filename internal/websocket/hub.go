package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"prospec-live/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub fans realtime events out to agents grouped by building room. A room is
// the set of connections currently prospecting one building; duo partners
// share a room and converge through it.
type Hub struct {
	// room (building id) -> connected clients
	rooms map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.rooms[client.Room] = append(h.rooms[client.Room], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client joined room", map[string]interface{}{
				"room": client.Room, "agent_id": client.AgentID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				for i, c := range clients {
					if c == client {
						h.rooms[client.Room] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.rooms[client.Room]) == 0 {
					delete(h.rooms, client.Room)
					h.logger.Info("Hub", "Room emptied", map[string]interface{}{"room": client.Room})
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastRoom sends an event to every client in a building room and relays
// it to the other instances via Redis.
func (h *Hub) BroadcastRoom(room string, eventType string, payload interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	h.sendLocal(room, data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"room":    room,
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "building_events", envelope)
	}
}

func (h *Hub) sendLocal(room string, data []byte) {
	h.mu.RLock()
	clients := h.rooms[room]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"room": room, "agent_id": client.AgentID,
			})
			// The unregister handler owns the close; a repeated enqueue of the
			// same client is a no-op there.
			h.unregister <- client
		}
	}
}

// subscribeToRedis relays room events published by other instances. Delivery
// order within a room follows the Redis channel order, which is what makes
// "last received wins" well-defined across instances.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "building_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope struct {
			Room    string          `json:"room"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		h.sendLocal(envelope.Room, envelope.Message)
	}
}
