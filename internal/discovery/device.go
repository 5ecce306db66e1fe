package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge represents a TCP serial bridge discovered over mDNS
type Bridge struct {
	// Instance is the advertised service instance name
	Instance string

	// Service is the service type it was found under (e.g., "_ser2net._tcp")
	Service string

	// Hostname is the mDNS hostname (e.g., "esp-bridge.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 if no IPv4 was advertised
	IP string

	// Port is the TCP port of the bridge
	Port int

	// Metadata contains the mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Serial bridge %s (%s) at %s", b.Instance, b.Hostname, b.Addr())
}

// Addr returns the host:port to pass to the tcp transport
func (b *Bridge) Addr() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

// BLEDevice is an advertising Bluetooth Low Energy device
type BLEDevice struct {
	Address      string
	Name         string
	RSSI         int
	UART         bool // advertises the Nordic UART service
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *BLEDevice) String() string {
	name := d.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s %s %d dBm", d.Address, name, d.RSSI)
}
