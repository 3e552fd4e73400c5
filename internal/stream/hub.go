// Package stream pushes form session snapshots to browser tabs over WebSocket.
package stream

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ashureev/biogen/internal/session"
	"github.com/coder/websocket"
)

// sendBuffer is the number of queued messages per client before drops.
const sendBuffer = 16

// message is the envelope written to clients.
type message struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks one live connection per owner/tab.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[string]*client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[string]map[string]*client),
	}
}

func (h *Hub) register(ownerID, sessionID string, conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[ownerID]; !exists {
		h.active[ownerID] = make(map[string]*client)
	}
	if existing, exists := h.active[ownerID][sessionID]; exists && existing.conn != conn {
		_ = existing.conn.Close(websocket.StatusNormalClosure, "session replaced")
	}
	h.active[ownerID][sessionID] = c
	slog.Info("Session stream registered", "owner_id", ownerID, "session_id", sessionID)
	return c
}

func (h *Hub) unregister(ownerID, sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tabs, ok := h.active[ownerID]; ok {
		if current, exists := tabs[sessionID]; exists && current == c {
			delete(tabs, sessionID)
			if len(tabs) == 0 {
				delete(h.active, ownerID)
			}
			slog.Info("Session stream unregistered", "owner_id", ownerID, "session_id", sessionID)
		}
	}
}

// Connected reports whether a tab has a live stream.
func (h *Hub) Connected(ownerID, sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.active[ownerID][sessionID]
	return ok
}

// Publish queues a snapshot for the tab's connection, if any. It never
// blocks; a client that is too slow loses the update and catches up on the
// next one since every snapshot is complete.
func (h *Hub) Publish(ownerID, sessionID string, s session.Snapshot) {
	h.mu.RLock()
	c, ok := h.active[ownerID][sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(message{Type: "snapshot", Snapshot: &s})
	if err != nil {
		slog.Error("Failed to encode snapshot", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("Session stream buffer full, dropping snapshot", "owner_id", ownerID, "session_id", sessionID, "version", s.Version)
	}
}
