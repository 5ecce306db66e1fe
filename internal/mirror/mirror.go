package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

// DefaultHistory is the number of events replayed to new clients
const DefaultHistory = 200

// Config holds the mirror configuration
type Config struct {
	Addr    string // listen address, e.g. "127.0.0.1:8765"
	Device  string // device address shown on the info endpoint
	History int    // events replayed to new clients; 0 uses DefaultHistory, <0 disables
}

// Mirror is an HTTP server publishing the terminal log over WebSocket.
// It implements terminal.Console.
type Mirror struct {
	config   Config
	hub      *Hub
	upgrader websocket.Upgrader
	now      func() time.Time

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New creates a Mirror; call Start to begin serving
func New(cfg Config) *Mirror {
	history := cfg.History
	switch {
	case history == 0:
		history = DefaultHistory
	case history < 0:
		history = 0
	}

	return &Mirror{
		config: cfg,
		hub:    NewHub(history),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		now: time.Now,
	}
}

// Handler returns the HTTP routes: /ws for the feed and / for a JSON summary
func (m *Mirror) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWebSocket)
	mux.HandleFunc("/", m.handleInfo)
	return mux
}

func (m *Mirror) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Failed to upgrade mirror connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	m.hub.Serve(conn)
}

type infoResponse struct {
	Device  string `json:"device,omitempty"`
	Clients int    `json:"clients"`
}

func (m *Mirror) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(infoResponse{
		Device:  m.config.Device,
		Clients: m.hub.ClientCount(),
	})
}

// Start listens on the configured address and serves in the background
func (m *Mirror) Start() error {
	ln, err := net.Listen("tcp", m.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.mu.Lock()
	m.listener = ln
	m.server = srv
	m.mu.Unlock()

	logging.Info("Mirror listening",
		zap.String("addr", ln.Addr().String()),
	)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Mirror server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start
func (m *Mirror) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Shutdown disconnects clients and stops the server
func (m *Mirror) Shutdown(ctx context.Context) error {
	m.hub.Close()

	m.mu.Lock()
	srv := m.server
	m.server = nil
	m.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (m *Mirror) publish(typ, text string) {
	m.hub.Broadcast(Event{Type: typ, Text: text, Time: m.now().UTC()})
}

// Status publishes a status line
func (m *Mirror) Status(text string) { m.publish(TypeStatus, text) }

// Sent publishes an outgoing message
func (m *Mirror) Sent(text string) { m.publish(TypeSent, text) }

// Received publishes rendered inbound text
func (m *Mirror) Received(text string) { m.publish(TypeReceived, text) }

// Notice publishes a transient notice
func (m *Mirror) Notice(text string) { m.publish(TypeNotice, text) }
