package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to a building room.
func ServeWs(hub *Hub, c *websocket.Conn, room string, agentID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, Room: room, AgentID: agentID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // blocks until the connection drops
}
