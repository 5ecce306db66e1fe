package mirror

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; clients never send data
	maxMessageSize = 512

	// Events queued per client before it is considered too slow
	clientBuffer = 256
)

// client is one WebSocket connection with its own writer goroutine
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string
	send   chan Event
}

// Hub tracks clients and fans events out to them
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	history  []Event
	maxHist  int
	closed   bool
	shutdown chan struct{}
}

// NewHub creates a hub that remembers the last history events
func NewHub(history int) *Hub {
	if history < 0 {
		history = 0
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		maxHist:  history,
		shutdown: make(chan struct{}),
	}
}

// Broadcast queues ev for every client. It never blocks: a client whose
// queue is full is disconnected.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	if h.maxHist > 0 {
		h.history = append(h.history, ev)
		if over := len(h.history) - h.maxHist; over > 0 {
			h.history = append(h.history[:0], h.history[over:]...)
		}
	}

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			logging.Warn("Mirror client too slow, dropping",
				zap.String("remote_addr", c.remote),
			)
			h.removeLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve registers conn and runs it until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		hub:    h,
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan Event, clientBuffer+h.maxHist),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	for _, ev := range h.history {
		c.send <- ev
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logging.LogConnection(c.remote, "mirror_client_connected")

	go c.writePump()
	c.readPump()
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.shutdown)
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the client's queue; its writer then closes the socket
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump discards client messages and detects disconnects
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
		logging.LogConnection(c.remote, "mirror_client_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Mirror client read error",
					zap.String("remote_addr", c.remote),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump is the only goroutine that writes to the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "mirror closed"))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c)
				return
			}
		}
	}
}
