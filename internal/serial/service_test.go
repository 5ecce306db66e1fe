package serial

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// pipeSocket is a Socket backed by one end of a net.Pipe
type pipeSocket struct {
	conn    net.Conn
	openErr error
	gate    chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newPipeSocket() (*pipeSocket, net.Conn) {
	local, remote := net.Pipe()
	return &pipeSocket{conn: local, closed: make(chan struct{})}, remote
}

func (p *pipeSocket) Open(ctx context.Context) error {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.openErr
}

func (p *pipeSocket) Read(b []byte) (int, error)  { return p.conn.Read(b) }
func (p *pipeSocket) Write(b []byte) (int, error) { return p.conn.Write(b) }
func (p *pipeSocket) String() string              { return "pipe" }

func (p *pipeSocket) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.conn.Close()
	})
	return nil
}

func (p *pipeSocket) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// recorder collects events on a channel
type recorder struct {
	events chan Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 32)}
}

func (r *recorder) OnSerialConnect() { r.events <- Event{Kind: EventConnect} }
func (r *recorder) OnSerialConnectError(err error) {
	r.events <- Event{Kind: EventConnectError, Err: err}
}
func (r *recorder) OnSerialRead(chunks [][]byte) { r.events <- Event{Kind: EventRead, Chunks: chunks} }
func (r *recorder) OnSerialIOError(err error)    { r.events <- Event{Kind: EventIOError, Err: err} }

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %v", ev.Kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestService_ConnectReadWrite(t *testing.T) {
	svc := NewService()
	rec := newRecorder()
	if err := svc.Attach(rec); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	sock, remote := newPipeSocket()
	defer remote.Close()

	if err := svc.Connect(context.Background(), sock); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if ev := rec.next(t); ev.Kind != EventConnect {
		t.Fatalf("first event = %v, want connect", ev.Kind)
	}
	if !svc.Connected() {
		t.Error("Connected() = false after connect event")
	}

	go remote.Write([]byte("hello"))
	ev := rec.next(t)
	if ev.Kind != EventRead {
		t.Fatalf("event = %v, want read", ev.Kind)
	}
	if got := string(ev.Chunks[0]); got != "hello" {
		t.Errorf("read chunk = %q, want %q", got, "hello")
	}

	received := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := remote.Read(buf)
		received <- string(buf[:n])
	}()
	if err := svc.Write([]byte("abc\r\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	select {
	case got := <-received:
		if got != "abc\r\n" {
			t.Errorf("remote received %q, want %q", got, "abc\r\n")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("remote never received data")
	}

	svc.Disconnect()
	rec.expectNone(t)
	if !sock.isClosed() {
		t.Error("socket not closed after Disconnect")
	}
}

func TestService_WriteNotConnected(t *testing.T) {
	svc := NewService()
	if err := svc.Write([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Write() error = %v, want ErrNotConnected", err)
	}
}

func TestService_ConnectError(t *testing.T) {
	svc := NewService()
	rec := newRecorder()
	svc.Attach(rec)

	openErr := errors.New("host is down")
	sock, remote := newPipeSocket()
	defer remote.Close()
	sock.openErr = openErr

	if err := svc.Connect(context.Background(), sock); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	ev := rec.next(t)
	if ev.Kind != EventConnectError {
		t.Fatalf("event = %v, want connect_error", ev.Kind)
	}
	if !errors.Is(ev.Err, openErr) {
		t.Errorf("event error = %v, want %v", ev.Err, openErr)
	}
	if !sock.isClosed() {
		t.Error("failed socket was not released")
	}

	// The holder is free again
	sock2, remote2 := newPipeSocket()
	defer remote2.Close()
	if err := svc.Connect(context.Background(), sock2); err != nil {
		t.Errorf("Connect() after failure error = %v", err)
	}
	svc.Disconnect()
}

func TestService_ConnectBusy(t *testing.T) {
	svc := NewService()
	sock, remote := newPipeSocket()
	defer remote.Close()
	sock.gate = make(chan struct{})

	if err := svc.Connect(context.Background(), sock); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	other, remote2 := newPipeSocket()
	defer remote2.Close()
	if err := svc.Connect(context.Background(), other); !errors.Is(err, ErrBusy) {
		t.Errorf("second Connect() error = %v, want ErrBusy", err)
	}
	svc.Disconnect()
}

func TestService_IOError(t *testing.T) {
	svc := NewService()
	rec := newRecorder()
	svc.Attach(rec)

	sock, remote := newPipeSocket()
	svc.Connect(context.Background(), sock)
	if ev := rec.next(t); ev.Kind != EventConnect {
		t.Fatalf("event = %v, want connect", ev.Kind)
	}

	remote.Close()
	ev := rec.next(t)
	if ev.Kind != EventIOError {
		t.Fatalf("event = %v, want io_error", ev.Kind)
	}
	if ev.Err == nil {
		t.Error("io_error without error")
	}
	if svc.Connected() {
		t.Error("Connected() = true after io error")
	}
	if err := svc.Write([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Write() after io error = %v, want ErrNotConnected", err)
	}
}

func TestService_DisconnectWhileOpening(t *testing.T) {
	svc := NewService()
	rec := newRecorder()
	svc.Attach(rec)

	sock, remote := newPipeSocket()
	defer remote.Close()
	sock.gate = make(chan struct{})

	svc.Connect(context.Background(), sock)
	svc.Disconnect()
	close(sock.gate)

	rec.expectNone(t)
	svc.Disconnect()
}

func TestService_QueueWhileDetached(t *testing.T) {
	svc := NewService()
	sock, remote := newPipeSocket()
	defer remote.Close()

	svc.Connect(context.Background(), sock)

	// Wait for the socket to be open before writing
	deadline := time.Now().Add(2 * time.Second)
	for !svc.Connected() {
		if time.Now().After(deadline) {
			t.Fatal("service never connected")
		}
		time.Sleep(5 * time.Millisecond)
	}
	remote.Write([]byte("ab"))
	remote.Write([]byte("cd"))

	// Give the read loop time to queue both chunks
	time.Sleep(50 * time.Millisecond)

	rec := newRecorder()
	if err := svc.Attach(rec); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if ev := rec.next(t); ev.Kind != EventConnect {
		t.Fatalf("first replayed event = %v, want connect", ev.Kind)
	}
	ev := rec.next(t)
	if ev.Kind != EventRead {
		t.Fatalf("second replayed event = %v, want read", ev.Kind)
	}
	var got string
	for _, c := range ev.Chunks {
		got += string(c)
	}
	if got != "abcd" {
		t.Errorf("merged read = %q, want %q", got, "abcd")
	}
	rec.expectNone(t)
	svc.Disconnect()
}

func TestService_AttachSecondListener(t *testing.T) {
	svc := NewService()
	if err := svc.Attach(newRecorder()); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := svc.Attach(newRecorder()); !errors.Is(err, ErrListenerAttached) {
		t.Errorf("second Attach() error = %v, want ErrListenerAttached", err)
	}
	svc.Detach()
	if err := svc.Attach(newRecorder()); err != nil {
		t.Errorf("Attach() after Detach error = %v", err)
	}
}

func TestService_Close(t *testing.T) {
	svc := NewService()
	svc.Close()

	sock, remote := newPipeSocket()
	defer remote.Close()
	if err := svc.Connect(context.Background(), sock); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect() after Close error = %v, want ErrClosed", err)
	}
}

func TestMailbox_MergesReads(t *testing.T) {
	m := NewMailbox()
	m.OnSerialConnect()
	m.OnSerialRead([][]byte{[]byte("a")})
	m.OnSerialRead([][]byte{[]byte("b")})
	m.OnSerialIOError(errors.New("gone"))

	select {
	case <-m.Ready():
	default:
		t.Fatal("Ready() not signalled")
	}

	events := m.Drain()
	kinds := []EventKind{EventConnect, EventRead, EventIOError}
	if len(events) != len(kinds) {
		t.Fatalf("Drain() returned %d events, want %d", len(events), len(kinds))
	}
	for i, k := range kinds {
		if events[i].Kind != k {
			t.Errorf("event[%d] = %v, want %v", i, events[i].Kind, k)
		}
	}
	if len(events[1].Chunks) != 2 {
		t.Errorf("merged read has %d chunks, want 2", len(events[1].Chunks))
	}
	if len(m.Drain()) != 0 {
		t.Error("second Drain() should be empty")
	}
}
