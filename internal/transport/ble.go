package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/muurk/btterm/internal/logging"
)

// Nordic UART service and characteristics
var (
	nusServiceUUID = mustParseUUID("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")
	nusRXCharUUID  = mustParseUUID("6E400002-B5A3-F393-E0A9-E50E24DCCA9E") // host writes
	nusTXCharUUID  = mustParseUUID("6E400003-B5A3-F393-E0A9-E50E24DCCA9E") // device notifies
)

// bleChunkSize is the payload of one write at the default ATT MTU
const bleChunkSize = 20

// bleBacklog is the number of notifications buffered ahead of Read
const bleBacklog = 256

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// BLESocket speaks the Nordic UART service. Notifications from the TX
// characteristic are fed through a pipe so Read blocks like a stream.
type BLESocket struct {
	address string
	adapter *bluetooth.Adapter

	mu     sync.Mutex
	device *bluetooth.Device
	rx     bluetooth.DeviceCharacteristic
	open   bool
	closed bool

	pr       *io.PipeReader
	pw       *io.PipeWriter
	incoming chan []byte
	done     chan struct{}
}

// NewBLESocket creates an unopened socket for address on the default adapter
func NewBLESocket(address string) *BLESocket {
	pr, pw := io.Pipe()
	return &BLESocket{
		address:  strings.ToUpper(strings.TrimSpace(address)),
		adapter:  bluetooth.DefaultAdapter,
		pr:       pr,
		pw:       pw,
		incoming: make(chan []byte, bleBacklog),
		done:     make(chan struct{}),
	}
}

// Open connects, finds the UART characteristics and subscribes to TX
func (s *BLESocket) Open(ctx context.Context) error {
	if err := s.adapter.Enable(); err != nil {
		return newError(KindUnsupported, string(BLE), s.address, fmt.Errorf("enable adapter: %w", err))
	}

	var addr bluetooth.Address
	addr.Set(s.address)

	connected := make(chan bleConnectResult, 1)
	go func() {
		dev, err := s.adapter.Connect(addr, bluetooth.ConnectionParams{})
		connected <- bleConnectResult{dev, err}
	}()

	var device bluetooth.Device
	select {
	case r := <-connected:
		if r.err != nil {
			return newError(KindOpen, string(BLE), s.address, r.err)
		}
		device = r.device
	case <-ctx.Done():
		go abandonConnect(connected)
		return newError(KindOpen, string(BLE), s.address, ctx.Err())
	case <-s.done:
		go abandonConnect(connected)
		return newError(KindOpen, string(BLE), s.address, ErrSocketClosed)
	}

	rx, tx, err := discoverUART(&device)
	if err != nil {
		_ = device.Disconnect()
		return newError(KindOpen, string(BLE), s.address, err)
	}

	go s.pump()
	if err := tx.EnableNotifications(s.notify); err != nil {
		_ = device.Disconnect()
		return newError(KindOpen, string(BLE), s.address, fmt.Errorf("enable notifications: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = device.Disconnect()
		return newError(KindOpen, string(BLE), s.address, ErrSocketClosed)
	}
	s.device = &device
	s.rx = rx
	s.open = true
	return nil
}

type bleConnectResult struct {
	device bluetooth.Device
	err    error
}

// abandonConnect disconnects a device whose connect finished after Open gave up
func abandonConnect(ch <-chan bleConnectResult) {
	if r := <-ch; r.err == nil {
		_ = r.device.Disconnect()
	}
}

func discoverUART(device *bluetooth.Device) (rx, tx bluetooth.DeviceCharacteristic, err error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{nusServiceUUID})
	if err != nil {
		return rx, tx, fmt.Errorf("discover services: %w", err)
	}
	if len(services) == 0 {
		return rx, tx, errors.New("device does not expose the Nordic UART service")
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{nusRXCharUUID, nusTXCharUUID})
	if err != nil {
		return rx, tx, fmt.Errorf("discover characteristics: %w", err)
	}

	var foundRX, foundTX bool
	for _, c := range chars {
		switch c.UUID() {
		case nusRXCharUUID:
			rx, foundRX = c, true
		case nusTXCharUUID:
			tx, foundTX = c, true
		}
	}
	if !foundRX || !foundTX {
		return rx, tx, errors.New("nordic UART characteristics not found")
	}
	return rx, tx, nil
}

// notify runs on the Bluetooth stack's goroutine and must not block
func (s *BLESocket) notify(buf []byte) {
	chunk := make([]byte, len(buf))
	copy(chunk, buf)
	select {
	case s.incoming <- chunk:
	case <-s.done:
	default:
		logging.Warn("BLE receive backlog full, dropping notification",
			zap.String("address", s.address),
			zap.Int("bytes", len(chunk)),
		)
	}
}

// pump moves notifications into the pipe until the socket closes
func (s *BLESocket) pump() {
	for {
		select {
		case chunk := <-s.incoming:
			if _, err := s.pw.Write(chunk); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *BLESocket) Read(p []byte) (int, error) {
	n, err := s.pr.Read(p)
	if err != nil {
		return n, newError(KindIO, string(BLE), s.address, err)
	}
	return n, nil
}

// Write sends p in MTU-sized chunks without response
func (s *BLESocket) Write(p []byte) (int, error) {
	s.mu.Lock()
	rx, open := s.rx, s.open
	s.mu.Unlock()
	if !open {
		return 0, newError(KindIO, string(BLE), s.address, ErrSocketClosed)
	}

	written := 0
	for written < len(p) {
		end := written + bleChunkSize
		if end > len(p) {
			end = len(p)
		}
		n, err := rx.WriteWithoutResponse(p[written:end])
		written += n
		if err != nil {
			return written, newError(KindIO, string(BLE), s.address, err)
		}
	}
	return written, nil
}

// Close disconnects and unblocks Read; it is safe to call at any time
func (s *BLESocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.open = false
	close(s.done)
	device := s.device
	s.device = nil
	s.mu.Unlock()

	s.pw.CloseWithError(ErrSocketClosed)
	if device != nil {
		return device.Disconnect()
	}
	return nil
}

func (s *BLESocket) String() string {
	return "ble://" + s.address
}
