package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"vendorwatch/internal/analysis"
)

// Hub manages WebSocket clients subscribed to bulk-scan progress.
// Clients are keyed by the owning user, so one user's progress never
// reaches another's connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Subscribe(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[userID][conn] = struct{}{}
}

func (h *Hub) Unsubscribe(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Broadcast implements analysis.Broadcaster.
func (h *Hub) Broadcast(userID int64, ev analysis.ProgressEvent) {
	h.mu.RLock()
	conns := h.clients[userID]
	h.mu.RUnlock()

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	for conn := range conns {
		err := conn.Write(context.Background(), websocket.MessageText, data)
		if err != nil {
			slog.Debug("ws write error", "error", err)
			h.Unsubscribe(userID, conn)
			conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("ws accept error", "error", err)
		return
	}
	defer conn.CloseNow()

	s.hub.Subscribe(user.ID, conn)
	defer s.hub.Unsubscribe(user.ID, conn)

	// Keep connection alive until the client closes or the request ends
	for {
		_, _, err := conn.Read(r.Context())
		if err != nil {
			return
		}
	}
}
