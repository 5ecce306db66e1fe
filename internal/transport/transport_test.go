package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/muurk/btterm/internal/bluez"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		input   string
		want    Name
		wantErr bool
	}{
		{"", Auto, false},
		{"rfcomm", RFCOMM, false},
		{"BLE", BLE, false},
		{" tty ", TTY, false},
		{"tcp", TCP, false},
		{"usb", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptions_Select(t *testing.T) {
	spp := &bluez.Device{UUIDs: []string{bluez.SerialPortUUID}}
	nus := &bluez.Device{UUIDs: []string{bluez.NordicUARTServiceUUID}}
	both := &bluez.Device{UUIDs: []string{bluez.NordicUARTServiceUUID, bluez.SerialPortUUID}}

	tests := []struct {
		name string
		opts Options
		dev  *bluez.Device
		want Name
	}{
		{"auto with spp", Options{}, spp, RFCOMM},
		{"auto with nus", Options{}, nus, BLE},
		{"auto with both", Options{}, both, RFCOMM},
		{"auto without device", Options{Transport: Auto}, nil, RFCOMM},
		{"explicit tty", Options{Transport: TTY}, nus, TTY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Select(tt.dev); got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptions_NeedsDevice(t *testing.T) {
	tests := []struct {
		transport Name
		want      bool
	}{
		{"", true},
		{Auto, true},
		{RFCOMM, true},
		{BLE, true},
		{TTY, false},
		{TCP, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.transport), func(t *testing.T) {
			if got := (Options{Transport: tt.transport}).NeedsDevice(); got != tt.want {
				t.Errorf("NeedsDevice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSocket_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		dev  *bluez.Device
		opts Options
	}{
		{"rfcomm without address", &bluez.Device{}, Options{Transport: RFCOMM}},
		{"rfcomm bad address", &bluez.Device{Address: "zz"}, Options{Transport: RFCOMM}},
		{"rfcomm bad channel", &bluez.Device{Address: "48:E7:29:9F:90:06"}, Options{Transport: RFCOMM, Channel: 31}},
		{"ble without address", nil, Options{Transport: BLE}},
		{"tcp without addr", nil, Options{Transport: TCP}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSocket(tt.dev, tt.opts)
			if !IsKind(err, KindConfig) {
				t.Errorf("NewSocket() error = %v, want config error", err)
			}
		})
	}
}

func TestNewSocket_Types(t *testing.T) {
	dev := &bluez.Device{Address: "48:E7:29:9F:90:06"}

	tests := []struct {
		opts Options
		want string
	}{
		{Options{Transport: RFCOMM}, "rfcomm://48:E7:29:9F:90:06/1"},
		{Options{Transport: RFCOMM, Channel: 3}, "rfcomm://48:E7:29:9F:90:06/3"},
		{Options{Transport: BLE}, "ble://48:E7:29:9F:90:06"},
		{Options{Transport: TTY}, "tty:///dev/rfcomm0"},
		{Options{Transport: TCP, TCPAddr: "bridge.local:4000"}, "tcp://bridge.local:4000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.opts.Transport), func(t *testing.T) {
			sock, err := Factory(tt.opts)(dev)
			if err != nil {
				t.Fatalf("NewSocket() error = %v", err)
			}
			if got := sock.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if err := sock.Close(); err != nil {
				t.Errorf("Close() before Open error = %v", err)
			}
		})
	}
}

func TestNewRFCOMMSocket_ReversesAddress(t *testing.T) {
	s, err := NewRFCOMMSocket("48:e7:29:9f:90:06", 1)
	if err != nil {
		t.Fatalf("NewRFCOMMSocket() error = %v", err)
	}
	want := [6]byte{0x06, 0x90, 0x9f, 0x29, 0xe7, 0x48}
	if s.bdaddr != want {
		t.Errorf("bdaddr = % x, want % x", s.bdaddr, want)
	}
}

func TestRFCOMMSocket_OpenAfterClose(t *testing.T) {
	s, err := NewRFCOMMSocket("48:E7:29:9F:90:06", 1)
	if err != nil {
		t.Fatalf("NewRFCOMMSocket() error = %v", err)
	}
	s.Close()
	s.Close()

	if err := s.Open(context.Background()); err == nil {
		t.Error("Open() after Close should fail")
	}
}

func TestError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(newError(KindOpen, "tcp", "127.0.0.1:1", cause))

	if got, want := err.Error(), "tcp 127.0.0.1:1: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !IsKind(err, KindOpen) || IsKind(err, KindIO) {
		t.Error("IsKind mismatch")
	}
	if IsKind(cause, KindOpen) {
		t.Error("plain error should not match any kind")
	}
}

func TestTCPSocket_RoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn)
	}()

	s := NewTCPSocket(ln.Addr().String(), time.Second)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("ping\r\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	buf := make([]byte, 16)
	got := ""
	for len(got) < 6 {
		n, err := s.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		got += string(buf[:n])
	}
	if got != "ping\r\n" {
		t.Errorf("echo = %q", got)
	}
}

func TestTCPSocket_CloseUnblocksRead(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(2 * time.Second)
		}
	}()

	s := NewTCPSocket(ln.Addr().String(), time.Second)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := s.Read(make([]byte, 8))
		errc <- err
	}()
	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case err := <-errc:
		if !IsKind(err, KindIO) {
			t.Errorf("Read() error = %v, want io error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Read() not unblocked by Close")
	}
}

func TestTCPSocket_OpenRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := NewTCPSocket(addr, time.Second)
	if err := s.Open(context.Background()); !IsKind(err, KindOpen) {
		t.Errorf("Open() error = %v, want open error", err)
	}
}

func TestTTYSocket_MissingDevice(t *testing.T) {
	s := NewTTYSocket(filepath.Join(t.TempDir(), "rfcomm9"), DefaultBaudRate)
	err := s.Open(context.Background())
	if err == nil {
		t.Fatal("Open() of a missing device should fail")
	}
	var te *Error
	if !errors.As(err, &te) || te.Op != "tty" {
		t.Errorf("Open() error = %v, want tty transport error", err)
	}
	if _, err := s.Write([]byte("x")); !IsKind(err, KindIO) {
		t.Errorf("Write() on unopened socket = %v, want io error", err)
	}
}
