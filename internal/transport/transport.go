package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/serial"
)

// Name identifies a transport
type Name string

const (
	Auto   Name = "auto"
	RFCOMM Name = "rfcomm"
	BLE    Name = "ble"
	TTY    Name = "tty"
	TCP    Name = "tcp"
)

// Names lists the selectable transports in help order
var Names = []Name{Auto, RFCOMM, BLE, TTY, TCP}

// Defaults
const (
	DefaultChannel     = 1
	DefaultBaudRate    = 115200
	DefaultPortPath    = "/dev/rfcomm0"
	DefaultDialTimeout = 10 * time.Second
)

// ParseName parses a transport name; the empty string selects Auto
func ParseName(s string) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto, nil
	}
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown transport %q (expected one of %s)", s, strings.Join(nameStrings(), ", "))
}

func nameStrings() []string {
	out := make([]string, len(Names))
	for i, n := range Names {
		out[i] = string(n)
	}
	return out
}

// Options selects and configures a transport
type Options struct {
	Transport   Name
	Channel     uint8  // rfcomm
	PortPath    string // tty
	BaudRate    int    // tty
	TCPAddr     string // tcp, host:port
	DialTimeout time.Duration
	Adapter     string // ble, BlueZ adapter name (informational)
}

// withDefaults fills unset fields
func (o Options) withDefaults() Options {
	if o.Transport == "" {
		o.Transport = Auto
	}
	if o.Channel == 0 {
		o.Channel = DefaultChannel
	}
	if o.PortPath == "" {
		o.PortPath = DefaultPortPath
	}
	if o.BaudRate == 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	return o
}

// Select picks the transport to use for dev. Auto prefers BLE when the
// device advertises the Nordic UART service and RFCOMM otherwise.
func (o Options) Select(dev *bluez.Device) Name {
	if o.Transport != "" && o.Transport != Auto {
		return o.Transport
	}
	if dev != nil && dev.SupportsNordicUART() && !dev.SupportsSerialPort() {
		return BLE
	}
	return RFCOMM
}

// NeedsDevice reports whether the transport talks to the Bluetooth device
// directly. TTY and TCP reach it through an already bound node or a bridge,
// so BlueZ may have no record of it.
func (o Options) NeedsDevice() bool {
	switch o.Transport {
	case TTY, TCP:
		return false
	default:
		return true
	}
}

// NewSocket builds an unopened socket for dev
func NewSocket(dev *bluez.Device, opts Options) (serial.Socket, error) {
	opts = opts.withDefaults()

	var address string
	if dev != nil {
		address = dev.Address
	}

	switch name := opts.Select(dev); name {
	case RFCOMM:
		if address == "" {
			return nil, newError(KindConfig, string(name), "", fmt.Errorf("device address is required"))
		}
		return NewRFCOMMSocket(address, opts.Channel)
	case BLE:
		if address == "" {
			return nil, newError(KindConfig, string(name), "", fmt.Errorf("device address is required"))
		}
		return NewBLESocket(address), nil
	case TTY:
		return NewTTYSocket(opts.PortPath, opts.BaudRate), nil
	case TCP:
		if opts.TCPAddr == "" {
			return nil, newError(KindConfig, string(name), "", fmt.Errorf("--tcp-addr is required"))
		}
		return NewTCPSocket(opts.TCPAddr, opts.DialTimeout), nil
	default:
		return nil, newError(KindUnsupported, string(name), address, fmt.Errorf("unknown transport"))
	}
}

// Factory returns a socket factory bound to opts
func Factory(opts Options) func(dev *bluez.Device) (serial.Socket, error) {
	return func(dev *bluez.Device) (serial.Socket, error) {
		return NewSocket(dev, opts)
	}
}
