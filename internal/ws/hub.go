package ws

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Event is what the hub pushes to connected dashboard clients
type Event struct {
	Type string `json:"type"`
}

// Hub fans events out to every connected dashboard client. The bot uses
// it to tell the dashboard a new message landed in the log.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the fiber handler that upgrades and serves one client.
// It blocks until the client disconnects.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		h.add(conn)
		defer h.remove(conn)

		// Drain inbound frames; the dashboard socket is push-only
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// NotifyNewMessage tells every dashboard client the message log changed
func (h *Hub) NotifyNewMessage() {
	h.Broadcast(Event{Type: "new-message"})
}

// Broadcast pushes an event to all connected clients. Clients that fail
// to receive are dropped.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Dropping dashboard client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected dashboard clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}
