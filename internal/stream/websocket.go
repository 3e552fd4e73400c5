package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/biogen/internal/identity"
	"github.com/ashureev/biogen/internal/session"
	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// inbound is a message sent by the browser.
type inbound struct {
	Type string `json:"type"`
}

// Handler upgrades requests to a snapshot stream for the caller's session.
type Handler struct {
	hub           *Hub
	sessions      *session.Manager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a WebSocket handler.
func NewHandler(hub *Hub, sessions *session.Manager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		hub:           hub,
		sessions:      sessions,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID := identity.OwnerIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("Session stream request", "owner_id", ownerID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "owner_id", ownerID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "owner_id", ownerID)
		}
	}()

	c := h.hub.register(ownerID, sessionID, ws)
	defer h.hub.unregister(ownerID, sessionID, c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snap := h.sessions.Get(ownerID, sessionID).Snapshot()
	if err := writeJSON(ctx, ws, message{Type: "snapshot", Snapshot: &snap}); err != nil {
		slog.Debug("Failed to send initial snapshot", "error", err)
		return
	}

	go func() {
		defer cancel()
		h.readLoop(ctx, c, ownerID, sessionID)
	}()

	h.writeLoop(ctx, c)
	slog.Info("Session stream ended", "owner_id", ownerID, "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) readLoop(ctx context.Context, c *client, ownerID, sessionID string) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "owner_id", ownerID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "owner_id", ownerID)
			}
			return
		}

		h.sessions.Touch(ownerID, sessionID)

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "ping":
			if err := writeJSON(ctx, c.conn, message{Type: "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		case "refresh":
			snap := h.sessions.Get(ownerID, sessionID).Snapshot()
			h.hub.Publish(ownerID, sessionID, snap)
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("WebSocket write error", "error", err)
				return
			}
		}
	}
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(wctx, websocket.MessageText, data)
}
