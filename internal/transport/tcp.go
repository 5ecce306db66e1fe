package transport

import (
	"context"
	"net"
	"sync"
	"time"
)

// TCPSocket connects to a TCP serial bridge
type TCPSocket struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewTCPSocket creates an unopened socket for host:port
func NewTCPSocket(addr string, timeout time.Duration) *TCPSocket {
	return &TCPSocket{addr: addr, timeout: timeout}
}

// Open dials the bridge
func (s *TCPSocket) Open(ctx context.Context) error {
	d := net.Dialer{Timeout: s.timeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return newError(KindOpen, string(TCP), s.addr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return newError(KindOpen, string(TCP), s.addr, ErrSocketClosed)
	}
	s.conn = conn
	return nil
}

func (s *TCPSocket) Read(p []byte) (int, error) {
	conn := s.current()
	if conn == nil {
		return 0, newError(KindIO, string(TCP), s.addr, ErrSocketClosed)
	}
	n, err := conn.Read(p)
	if err != nil {
		return n, newError(KindIO, string(TCP), s.addr, err)
	}
	return n, nil
}

func (s *TCPSocket) Write(p []byte) (int, error) {
	conn := s.current()
	if conn == nil {
		return 0, newError(KindIO, string(TCP), s.addr, ErrSocketClosed)
	}
	n, err := conn.Write(p)
	if err != nil {
		return n, newError(KindIO, string(TCP), s.addr, err)
	}
	return n, nil
}

// Close closes the connection; it is safe to call at any time
func (s *TCPSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *TCPSocket) String() string {
	return "tcp://" + s.addr
}

func (s *TCPSocket) current() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
