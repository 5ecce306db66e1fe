package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, m *Mirror, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", m.hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestMirror_BroadcastsConsoleCalls(t *testing.T) {
	m := New(Config{Device: "48:E7:29:9F:90:06"})
	fixed := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	defer m.Shutdown(context.Background())

	conn := dial(t, srv)
	defer conn.Close()
	waitForClients(t, m, 1)

	m.Status("connected")
	m.Sent("abc")
	m.Received("OK\n")
	m.Notice("not connected")

	want := []Event{
		{Type: TypeStatus, Text: "connected", Time: fixed},
		{Type: TypeSent, Text: "abc", Time: fixed},
		{Type: TypeReceived, Text: "OK\n", Time: fixed},
		{Type: TypeNotice, Text: "not connected", Time: fixed},
	}
	for i, w := range want {
		got := readEvent(t, conn)
		if got.Type != w.Type || got.Text != w.Text || !got.Time.Equal(w.Time) {
			t.Errorf("event[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestMirror_ReplaysHistory(t *testing.T) {
	m := New(Config{History: 2})
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	defer m.Shutdown(context.Background())

	m.Status("connecting...")
	m.Status("connected")
	m.Received("hello\n")

	conn := dial(t, srv)
	defer conn.Close()

	if got := readEvent(t, conn); got.Text != "connected" {
		t.Errorf("first replayed event = %q, want %q", got.Text, "connected")
	}
	if got := readEvent(t, conn); got.Text != "hello\n" {
		t.Errorf("second replayed event = %q, want %q", got.Text, "hello\n")
	}
}

func TestMirror_ClientDisconnect(t *testing.T) {
	m := New(Config{})
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	defer m.Shutdown(context.Background())

	conn := dial(t, srv)
	waitForClients(t, m, 1)

	conn.Close()
	waitForClients(t, m, 0)

	// Publishing with no clients must not block or panic
	m.Status("still here")
}

func TestMirror_Info(t *testing.T) {
	m := New(Config{Device: "48:E7:29:9F:90:06"})
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if info.Device != "48:E7:29:9F:90:06" || info.Clients != 0 {
		t.Errorf("info = %+v", info)
	}

	resp2, err := http.Get(srv.URL + "/other")
	if err != nil {
		t.Fatalf("GET /other error = %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("GET /other status = %d, want 404", resp2.StatusCode)
	}
}

func TestMirror_StartAndShutdown(t *testing.T) {
	m := New(Config{Addr: "127.0.0.1:0"})
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.Addr() == "" {
		t.Fatal("Addr() empty after Start")
	}

	resp, err := http.Get("http://" + m.Addr() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestHub_HistoryLimit(t *testing.T) {
	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Broadcast(Event{Type: TypeReceived, Text: string(rune('a' + i))})
	}
	if len(h.history) != 3 || h.history[0].Text != "c" {
		t.Errorf("history = %+v, want last three events", h.history)
	}

	h.Close()
	h.Broadcast(Event{Type: TypeStatus})
	if len(h.history) != 3 {
		t.Error("Broadcast after Close should be ignored")
	}
}
