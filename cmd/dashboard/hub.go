package main

import (
	"net/http"
	"sync"

	"alphasignal-dashboard-go/internal/profiles"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans notices out to connected browser pages over websockets. It
// implements profiles.Notifier, so every toast and refresh signal the core
// emits reaches the page without the page polling for it.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// The bridge only listens on loopback; the page is served from
			// the same origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

// Notify implements profiles.Notifier by broadcasting the notice as JSON.
func (h *Hub) Notify(notice profiles.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(notice); err != nil {
			h.log.Debug("Dropping stale websocket client", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the peer
// goes away. Clients only listen; inbound messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	h.log.Info("Websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
