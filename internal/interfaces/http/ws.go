package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"driftwatch/internal/alert"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans alerts out to connected websocket clients. Slow clients are
// dropped rather than allowed to stall a broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan *alert.Alert
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan *alert.Alert)}
}

// Broadcast queues an alert for every connected client.
func (h *Hub) Broadcast(a *alert.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- a:
		default:
			log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("dropping slow websocket client")
			close(ch)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Serve upgrades the request and streams alerts until the client leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ch := make(chan *alert.Alert, wsSendBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("websocket client connected")

	go h.readLoop(conn)
	h.writeLoop(conn, ch)
}

// readLoop drains control frames and detects disconnects.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, ch chan *alert.Alert) {
	for a := range ch {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(a); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	conn.Close()
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		conn.Close()
		delete(h.clients, conn)
	}
}
