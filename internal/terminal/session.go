package terminal

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/logging"
	"github.com/muurk/btterm/internal/serial"
	"github.com/muurk/btterm/internal/textutil"
)

// Status lines and notices shown by the session
const (
	StatusConnecting       = "connecting..."
	StatusConnected        = "connected"
	StatusConnectionFailed = "connection failed: "
	StatusConnectionLost   = "connection lost: "
	NoticeNotConnected     = "not connected"
)

// Holder is the part of serial.Service the session depends on
type Holder interface {
	Attach(l serial.Listener) error
	Detach()
	Connect(ctx context.Context, sock serial.Socket) error
	Disconnect()
	Write(data []byte) error
}

// Resolver looks up a device by address
type Resolver interface {
	Resolve(ctx context.Context, address string) (*bluez.Device, error)
}

// SocketFactory builds an unopened socket for a resolved device
type SocketFactory func(dev *bluez.Device) (serial.Socket, error)

// Config configures a Session
type Config struct {
	Address  string
	Newline  textutil.Newline
	Hex      bool
	Holder   Holder
	Resolver Resolver
	Sockets  SocketFactory
	Console  Console

	// Listener is attached to the holder in place of the session itself.
	// Set it to a serial.Mailbox when events must be handed to another goroutine.
	Listener serial.Listener
}

// Session is the connection screen state for one device
type Session struct {
	address  string
	newline  textutil.Newline
	hex      bool
	holder   Holder
	resolver Resolver
	sockets  SocketFactory
	console  Console
	listener serial.Listener

	state        State
	initialStart bool
	resolving    bool // between Begin and Start
	filter       *textutil.NewlineFilter
}

var _ serial.Listener = (*Session)(nil)

// NewSession validates cfg and creates a disconnected session
func NewSession(cfg Config) (*Session, error) {
	if cfg.Holder == nil {
		return nil, errors.New("holder is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if cfg.Sockets == nil {
		return nil, errors.New("socket factory is required")
	}
	if cfg.Console == nil {
		return nil, errors.New("console is required")
	}

	newline := cfg.Newline
	if newline == "" {
		newline = textutil.DefaultNewline
	}
	if _, err := textutil.ParseNewline(newline.Name()); err != nil {
		return nil, err
	}

	s := &Session{
		address:      cfg.Address,
		newline:      newline,
		hex:          cfg.Hex,
		holder:       cfg.Holder,
		resolver:     cfg.Resolver,
		sockets:      cfg.Sockets,
		console:      cfg.Console,
		listener:     cfg.Listener,
		initialStart: true,
		filter:       textutil.NewNewlineFilter(newline),
	}
	if s.listener == nil {
		s.listener = s
	}
	return s, nil
}

// State returns the current connection state
func (s *Session) State() State {
	return s.state
}

// Hex reports whether hex mode is enabled
func (s *Session) Hex() bool {
	return s.hex
}

// SetHex switches between text and hex mode
func (s *Session) SetHex(on bool) {
	if s.hex == on {
		return
	}
	// A CR held back for text rendering would be lost once hex output starts
	if on {
		if rest := s.filter.Flush(); rest != "" {
			s.console.Received(rest)
		}
	}
	s.hex = on
}

// Newline returns the configured newline style
func (s *Session) Newline() textutil.Newline {
	return s.newline
}

// Address returns the configured device address
func (s *Session) Address() string {
	return s.address
}

// Enter attaches the listener to the holder. The first call also looks up
// and connects to the configured device.
func (s *Session) Enter(ctx context.Context) {
	if s.Begin() {
		dev, err := s.Lookup(ctx)
		s.Start(ctx, dev, err)
	}
}

// Begin attaches the listener and reports whether this is the initial
// start. If so the caller follows with Lookup and Start.
func (s *Session) Begin() bool {
	if err := s.holder.Attach(s.listener); err != nil {
		logging.Warn("Failed to attach listener", zap.Error(err))
	}
	if !s.initialStart {
		return false
	}
	s.initialStart = false
	s.resolving = true
	return true
}

// Lookup resolves the configured address. It reads no mutable session
// state and may run on any goroutine.
func (s *Session) Lookup(ctx context.Context) (*bluez.Device, error) {
	return s.resolver.Resolve(ctx, s.address)
}

// Start finishes the initial connect with the result of Lookup. It is a
// no-op once the session has been closed.
func (s *Session) Start(ctx context.Context, dev *bluez.Device, err error) {
	if !s.resolving {
		return
	}
	s.resolving = false
	if err != nil {
		s.OnSerialConnectError(err)
		return
	}

	s.console.Status(StatusConnecting)
	if uuid := dev.FirstUUID(); uuid != "" {
		s.console.Status(uuid)
	}
	s.state = Pending

	sock, err := s.sockets(dev)
	if err != nil {
		s.OnSerialConnectError(err)
		return
	}
	if err := s.holder.Connect(ctx, sock); err != nil {
		_ = sock.Close()
		s.OnSerialConnectError(err)
	}
}

// Send encodes text and writes it to the device
func (s *Session) Send(text string) {
	if s.state != Connected {
		s.console.Notice(NoticeNotConnected)
		return
	}

	msg, data, err := textutil.EncodeOutgoing(text, s.hex, s.newline)
	if err != nil {
		s.console.Notice(err.Error())
		return
	}

	s.console.Sent(msg)
	if err := s.holder.Write(data); err != nil {
		s.OnSerialIOError(err)
	}
}

// Disconnect releases the connection without reporting an error
func (s *Session) Disconnect() {
	s.state = Disconnected
	s.holder.Disconnect()
}

// Leave stops event delivery. During a view change the listener stays
// attached so no events are queued.
func (s *Session) Leave(changing bool) {
	if !changing {
		s.holder.Detach()
	}
}

// Close ends the session. An open or opening connection is released.
func (s *Session) Close() {
	s.resolving = false
	if s.state != Disconnected {
		s.Disconnect()
	}
	s.holder.Detach()
	if rest := s.filter.Flush(); rest != "" {
		s.console.Received(rest)
	}
}

func (s *Session) OnSerialConnect() {
	s.state = Connected
	s.console.Status(StatusConnected)
}

func (s *Session) OnSerialConnectError(err error) {
	s.console.Status(StatusConnectionFailed + errorText(err))
	s.Disconnect()
}

func (s *Session) OnSerialRead(chunks [][]byte) {
	for _, chunk := range chunks {
		if s.hex {
			s.console.Received(textutil.ToHexDisplay(chunk) + "\n")
			continue
		}
		if text := s.filter.Render(chunk); text != "" {
			s.console.Received(text)
		}
	}
}

func (s *Session) OnSerialIOError(err error) {
	s.console.Status(StatusConnectionLost + errorText(err))
	s.Disconnect()
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
