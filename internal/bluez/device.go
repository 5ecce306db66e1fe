package bluez

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"
)

// Well-known service UUIDs
const (
	// SerialPortUUID is the classic Serial Port Profile service
	SerialPortUUID = "00001101-0000-1000-8000-00805f9b34fb"
	// NordicUARTServiceUUID is the BLE Nordic UART service
	NordicUARTServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
)

// baseUUIDSuffix completes 16 and 32 bit Bluetooth UUIDs
const baseUUIDSuffix = "-0000-1000-8000-00805f9b34fb"

// Device is what the terminal needs to know about a remote device
type Device struct {
	Address   string
	Name      string
	Alias     string
	Paired    bool
	Bonded    bool
	Connected bool
	Trusted   bool
	RSSI      int16
	UUIDs     []string
	Path      string // D-Bus object path, empty for static devices
}

// DisplayName returns the alias, name or address, whichever is set first
func (d *Device) DisplayName() string {
	switch {
	case d.Alias != "":
		return d.Alias
	case d.Name != "":
		return d.Name
	default:
		return d.Address
	}
}

// FirstUUID returns the first advertised service UUID, or "" if none
func (d *Device) FirstUUID() string {
	if d == nil || len(d.UUIDs) == 0 {
		return ""
	}
	return d.UUIDs[0]
}

// HasUUID reports whether the device advertises the given service
func (d *Device) HasUUID(id string) bool {
	want, err := NormalizeUUID(id)
	if err != nil {
		return false
	}
	for _, u := range d.UUIDs {
		if got, err := NormalizeUUID(u); err == nil && got == want {
			return true
		}
	}
	return false
}

// SupportsSerialPort reports whether the device advertises SPP
func (d *Device) SupportsSerialPort() bool {
	return d.HasUUID(SerialPortUUID)
}

// SupportsNordicUART reports whether the device advertises the Nordic UART service
func (d *Device) SupportsNordicUART() bool {
	return d.HasUUID(NordicUARTServiceUUID)
}

// NormalizeUUID returns the canonical lower-case 128-bit form of a UUID.
// 16-bit ("1101") and 32-bit short forms are expanded with the Bluetooth base UUID.
func NormalizeUUID(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	switch len(s) {
	case 4:
		s = "0000" + s + baseUUIDSuffix
	case 8:
		s = s + baseUUIDSuffix
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID %q: %w", s, err)
	}
	return u.String(), nil
}

// NormalizeAddress validates a MAC address and returns it upper-case.
// Lower-case hex digits are accepted.
func NormalizeAddress(address string) (string, error) {
	mac, err := bluetooth.ParseMAC(strings.ToUpper(strings.TrimSpace(address)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return strings.ToUpper(mac.String()), nil
}

// DevicePath returns the BlueZ object path of a device on the given adapter
func DevicePath(adapter, address string) string {
	return fmt.Sprintf("/org/bluez/%s/dev_%s", adapter, strings.ReplaceAll(strings.ToUpper(address), ":", "_"))
}
