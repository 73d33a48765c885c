package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live connections by id and delivers outbound events to them. It
// implements ports.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Send queues the event without blocking. A connection whose buffer is full
// misses the event; the next tally update supersedes it.
func (h *Hub) Send(connID, event string, payload any) {
	msg, err := json.Marshal(outboundEnvelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("event", event), slog.String("error", err.Error()))
		return
	}

	// the read lock keeps unregister from closing c.send mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.logger.Warn("dropping event for slow connection", slog.String("conn_id", connID), slog.String("event", event))
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Their read loops then run the usual
// disconnect handling.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			deadline(writeWait),
		)
		c.conn.Close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}
