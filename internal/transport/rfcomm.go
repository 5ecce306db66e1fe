package transport

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"
)

// RFCOMMSocket is a classic Bluetooth serial connection
type RFCOMMSocket struct {
	address string
	bdaddr  [6]byte // little-endian, as the kernel expects
	channel uint8

	mu     sync.Mutex
	file   *os.File
	closed bool
	done   chan struct{}
}

// NewRFCOMMSocket creates an unopened socket for address on channel
func NewRFCOMMSocket(address string, channel uint8) (*RFCOMMSocket, error) {
	mac, err := bluetooth.ParseMAC(strings.ToUpper(strings.TrimSpace(address)))
	if err != nil {
		return nil, newError(KindConfig, string(RFCOMM), address, fmt.Errorf("invalid address: %w", err))
	}
	if channel == 0 || channel > 30 {
		return nil, newError(KindConfig, string(RFCOMM), address, fmt.Errorf("channel %d out of range 1-30", channel))
	}
	return &RFCOMMSocket{
		address: strings.ToUpper(mac.String()),
		bdaddr:  [6]byte(mac),
		channel: channel,
		done:    make(chan struct{}),
	}, nil
}

func (s *RFCOMMSocket) Read(p []byte) (int, error) {
	f := s.current()
	if f == nil {
		return 0, newError(KindIO, string(RFCOMM), s.address, ErrSocketClosed)
	}
	n, err := f.Read(p)
	if err != nil {
		return n, newError(KindIO, string(RFCOMM), s.address, err)
	}
	return n, nil
}

func (s *RFCOMMSocket) Write(p []byte) (int, error) {
	f := s.current()
	if f == nil {
		return 0, newError(KindIO, string(RFCOMM), s.address, ErrSocketClosed)
	}
	n, err := f.Write(p)
	if err != nil {
		return n, newError(KindIO, string(RFCOMM), s.address, err)
	}
	return n, nil
}

// Close closes the socket and aborts a pending Open
func (s *RFCOMMSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *RFCOMMSocket) String() string {
	return fmt.Sprintf("rfcomm://%s/%d", s.address, s.channel)
}

func (s *RFCOMMSocket) current() *os.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// adopt stores the opened file unless Close won the race
func (s *RFCOMMSocket) adopt(f *os.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		f.Close()
		return newError(KindOpen, string(RFCOMM), s.address, ErrSocketClosed)
	}
	s.file = f
	return nil
}
