package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

// DefaultReadBufferSize is the size of the buffer used for each socket read
const DefaultReadBufferSize = 1024

// Service owns the socket for one device and reports its state to a Listener.
type Service struct {
	mu        sync.Mutex
	listener  Listener
	queue     []Event
	socket    Socket
	connected bool
	cancel    context.CancelFunc
	closed    bool

	// generation changes every time the socket is released, so goroutines
	// working on an older socket know their results are stale
	generation uint64

	// deliverMu serializes listener callbacks, including replay on Attach
	deliverMu sync.Mutex

	readBufferSize int
}

// NewService creates an idle Service
func NewService() *Service {
	return &Service{readBufferSize: DefaultReadBufferSize}
}

// SetReadBufferSize changes the per-read buffer size for future connections
func (s *Service) SetReadBufferSize(n int) {
	if n <= 0 {
		n = DefaultReadBufferSize
	}
	s.mu.Lock()
	s.readBufferSize = n
	s.mu.Unlock()
}

// Attach registers l as the active listener and replays any events that
// were raised while no listener was attached.
func (s *Service) Attach(l Listener) error {
	if l == nil {
		return errors.New("listener is nil")
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.listener != nil && s.listener != l {
		s.mu.Unlock()
		return ErrListenerAttached
	}
	s.listener = l
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, ev := range pending {
		ev.Dispatch(l)
	}
	return nil
}

// Detach removes the active listener. The socket stays open and later
// events are queued until the next Attach.
func (s *Service) Detach() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
}

// Connect starts opening sock in the background. The outcome is reported
// through OnSerialConnect or OnSerialConnectError.
func (s *Service) Connect(ctx context.Context, sock Socket) error {
	if sock == nil {
		return errors.New("socket is nil")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.socket != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	s.generation++
	gen := s.generation
	openCtx, cancel := context.WithCancel(ctx)
	s.socket = sock
	s.cancel = cancel
	s.connected = false
	bufSize := s.readBufferSize
	s.mu.Unlock()

	logging.LogConnection(sock.String(), "open_started")
	go s.run(openCtx, gen, sock, bufSize)
	return nil
}

// Connected reports whether the socket is open
func (s *Service) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Disconnect releases the socket. It is idempotent and never raises an
// error event for the socket it closes.
func (s *Service) Disconnect() {
	s.mu.Lock()
	sock := s.releaseLocked()
	s.mu.Unlock()

	if sock != nil {
		if err := sock.Close(); err != nil {
			logging.Debug("Socket close returned an error",
				zap.String("address", sock.String()),
				zap.Error(err),
			)
		}
		logging.LogConnection(sock.String(), "closed")
	}
}

// Write sends data to the open socket
func (s *Service) Write(data []byte) error {
	s.mu.Lock()
	sock := s.socket
	connected := s.connected
	s.mu.Unlock()

	if sock == nil || !connected {
		return ErrNotConnected
	}

	if _, err := sock.Write(data); err != nil {
		return fmt.Errorf("write to %s failed: %w", sock, err)
	}
	logging.LogSerialData(sock.String(), "sent", data)
	return nil
}

// Close disconnects, drops queued events and refuses further connects
func (s *Service) Close() {
	s.Disconnect()

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.listener = nil
	s.mu.Unlock()
}

// releaseLocked forgets the current socket and returns it for closing.
// s.mu must be held.
func (s *Service) releaseLocked() Socket {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	sock := s.socket
	s.socket = nil
	s.connected = false
	return sock
}

// current reports whether gen is still the live connection
func (s *Service) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// run opens the socket and, on success, reads until the socket fails or is released
func (s *Service) run(ctx context.Context, gen uint64, sock Socket, bufSize int) {
	err := sock.Open(ctx)

	s.mu.Lock()
	if s.generation != gen {
		// Disconnected while opening; Disconnect already closed the socket
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.releaseLocked()
		s.mu.Unlock()

		_ = sock.Close()
		logging.Warn("Connection failed",
			zap.String("address", sock.String()),
			zap.Error(err),
		)
		s.emit(Event{Kind: EventConnectError, Err: err})
		return
	}
	s.connected = true
	s.mu.Unlock()

	logging.LogConnection(sock.String(), "open_complete")
	s.emit(Event{Kind: EventConnect})

	buf := make([]byte, bufSize)
	for {
		n, err := sock.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if !s.current(gen) {
				return
			}
			logging.LogSerialData(sock.String(), "received", chunk)
			s.emit(Event{Kind: EventRead, Chunks: [][]byte{chunk}})
		}
		if err != nil {
			s.mu.Lock()
			if s.generation != gen {
				s.mu.Unlock()
				return
			}
			s.releaseLocked()
			s.mu.Unlock()

			_ = sock.Close()
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("remote side closed the connection: %w", err)
			}
			logging.Warn("Connection lost",
				zap.String("address", sock.String()),
				zap.Error(err),
			)
			s.emit(Event{Kind: EventIOError, Err: err})
			return
		}
	}
}

// emit delivers ev to the attached listener, or queues it when detached
func (s *Service) emit(ev Event) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	l := s.listener
	if l == nil {
		s.queue = appendEvent(s.queue, ev)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ev.Dispatch(l)
}
