package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// TTYSocket reads and writes a serial device node, typically one bound
// with `rfcomm bind` or a USB serial adapter.
type TTYSocket struct {
	path string
	baud int

	mu     sync.Mutex
	port   serial.Port
	closed bool
}

// NewTTYSocket creates an unopened socket for the device at path
func NewTTYSocket(path string, baud int) *TTYSocket {
	return &TTYSocket{path: path, baud: baud}
}

// Open opens the device with 8N1 framing
func (s *TTYSocket) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return newError(KindOpen, string(TTY), s.path, err)
	}

	port, err := serial.Open(s.path, &serial.Mode{
		BaudRate: s.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return newError(classifyPortError(err), string(TTY), s.path, describePortError(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = port.Close()
		return newError(KindOpen, string(TTY), s.path, ErrSocketClosed)
	}
	s.port = port
	return nil
}

func (s *TTYSocket) Read(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, newError(KindIO, string(TTY), s.path, ErrSocketClosed)
	}
	n, err := port.Read(p)
	if err != nil {
		return n, newError(KindIO, string(TTY), s.path, describePortError(err))
	}
	if n == 0 {
		// no read timeout is set, so an empty read means the device hung up
		return 0, newError(KindIO, string(TTY), s.path, io.EOF)
	}
	return n, nil
}

func (s *TTYSocket) Write(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, newError(KindIO, string(TTY), s.path, ErrSocketClosed)
	}
	n, err := port.Write(p)
	if err != nil {
		return n, newError(KindIO, string(TTY), s.path, describePortError(err))
	}
	return n, nil
}

// Close closes the port; it is safe to call at any time
func (s *TTYSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *TTYSocket) String() string {
	return "tty://" + s.path
}

func (s *TTYSocket) current() serial.Port {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// portError extracts a go.bug.st/serial error, returned by value or pointer
func portError(err error) (serial.PortError, bool) {
	var pe serial.PortError
	if errors.As(err, &pe) {
		return pe, true
	}
	var ppe *serial.PortError
	if errors.As(err, &ppe) && ppe != nil {
		return *ppe, true
	}
	return serial.PortError{}, false
}

// classifyPortError separates configuration mistakes from open failures
func classifyPortError(err error) ErrorKind {
	pe, ok := portError(err)
	if !ok {
		return KindOpen
	}
	switch pe.Code() {
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
		serial.InvalidStopBits, serial.InvalidTimeoutValue, serial.InvalidSerialPort:
		return KindConfig
	case serial.FunctionNotImplemented:
		return KindUnsupported
	default:
		return KindOpen
	}
}

// describePortError adds a readable cause to bare port error codes
func describePortError(err error) error {
	pe, ok := portError(err)
	if !ok {
		return err
	}
	switch pe.Code() {
	case serial.PortBusy:
		return fmt.Errorf("port busy: %w", err)
	case serial.PortNotFound:
		return fmt.Errorf("port not found: %w", err)
	case serial.PermissionDenied:
		return fmt.Errorf("permission denied: %w", err)
	case serial.PortClosed:
		return fmt.Errorf("port closed: %w", err)
	default:
		return err
	}
}
