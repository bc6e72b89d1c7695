// Package ws fans domain events out to connected department dashboards. It is
// a hub-and-spoke WebSocket layer: every state change a handler reports is
// pushed, unacknowledged, to every connected client. Connection and
// disconnection are themselves broadcast as presence events, and lightweight
// typing indicators from clients are relayed without being persisted.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is a named notification pushed to connected clients.
type Event struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// clientFrame is an inbound message from a connected client. Only presence
// chatter is accepted; everything else is ignored.
type clientFrame struct {
	Event string `json:"event"`
}

// Broadcaster is the interface domain services publish through.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Client is a single connected dashboard session.
type Client struct {
	ID       string
	Username string
	Send     chan []byte
}

// Hub tracks connected clients. It is the only shared mutable state besides
// the store; mutation happens on connect/disconnect, reads on broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  zerolog.Logger
	now     func() time.Time
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
		now:     time.Now,
	}
}

// Register adds a client and broadcasts its arrival as a presence event.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.Broadcast("presence", map[string]interface{}{
		"status":       "connected",
		"client_id":    client.ID,
		"username":     client.Username,
		"online_count": count,
	})
}

// Unregister removes a client, closes its send channel, and broadcasts the
// departure.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	count := len(h.clients)
	close(client.Send)
	h.mu.Unlock()

	h.Broadcast("presence", map[string]interface{}{
		"status":       "disconnected",
		"client_id":    client.ID,
		"username":     client.Username,
		"online_count": count,
	})
}

// Broadcast pushes a named event to every connected client. Delivery is
// best-effort: a client whose buffer is full is skipped, never waited on.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload, Timestamp: h.now()})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshal broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// relay handles an inbound client frame. Typing indicators are rebroadcast
// with the sender's name; anything else is dropped.
func (h *Hub) relay(client *Client, frame clientFrame) {
	switch frame.Event {
	case "typing", "stop_typing":
		h.Broadcast(frame.Event, map[string]interface{}{
			"client_id": client.ID,
			"username":  client.Username,
		})
	}
}
