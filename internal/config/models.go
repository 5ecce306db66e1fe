package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/btterm/internal/bluez"
	"github.com/muurk/btterm/internal/textutil"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// DefaultDeviceAddress is used when no device is configured
const DefaultDeviceAddress = "48:E7:29:9F:90:06"

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by upper-case MAC address
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device holds connection settings for a single remote device.
// Zero values fall back to the preferences and transport defaults.
type Device struct {
	Nickname  string    `yaml:"nickname,omitempty"`   // User-friendly name
	Name      string    `yaml:"name,omitempty"`       // Last name reported by the device
	Transport string    `yaml:"transport,omitempty"`  // auto, rfcomm, ble, tty, tcp
	Channel   int       `yaml:"channel,omitempty"`    // RFCOMM channel
	PortPath  string    `yaml:"port_path,omitempty"`  // TTY device node
	BaudRate  int       `yaml:"baud_rate,omitempty"`  // TTY baud rate
	TCPAddr   string    `yaml:"tcp_addr,omitempty"`   // host:port of a serial bridge
	Newline   string    `yaml:"newline,omitempty"`    // crlf or lf, overrides the preference
	LastSeen  time.Time `yaml:"last_seen,omitempty"`  // Last successful connection
	LastUUIDs []string  `yaml:"last_uuids,omitempty"` // Service UUIDs seen at last lookup
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice string `yaml:"default_device"`        // Address used when none is given
	Newline       string `yaml:"newline"`               // crlf or lf
	Hex           bool   `yaml:"hex"`                   // Start in hex mode
	Transport     string `yaml:"transport"`             // Default transport
	Adapter       string `yaml:"adapter,omitempty"`     // BlueZ adapter, e.g. hci0
	ScanTimeout   int    `yaml:"scan_timeout"`          // Discovery timeout in seconds
	MirrorAddr    string `yaml:"mirror_addr,omitempty"` // Listen address for the WebSocket mirror
}

// NewPreferences returns the default preferences
func NewPreferences() *Preferences {
	return &Preferences{
		DefaultDevice: DefaultDeviceAddress,
		Newline:       textutil.DefaultNewline.Name(),
		Transport:     "auto",
		Adapter:       bluez.DefaultAdapter,
		ScanTimeout:   10,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: NewPreferences(),
	}
}

// normalizeKey maps any accepted address spelling to its registry key
func normalizeKey(address string) string {
	if addr, err := bluez.NormalizeAddress(address); err == nil {
		return addr
	}
	return strings.ToUpper(strings.TrimSpace(address))
}

// GetDevice retrieves device settings by address.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(address string) *Device {
	return r.Devices[normalizeKey(address)]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(address string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	key := normalizeKey(address)
	if device, exists := r.Devices[key]; exists {
		return device
	}

	device := &Device{}
	r.Devices[key] = device
	return device
}

// UpdateDeviceLastSeen records a successful lookup of a device.
func (r *Registry) UpdateDeviceLastSeen(address, name string, uuids []string) {
	device := r.EnsureDevice(address)
	device.LastSeen = time.Now()
	if name != "" {
		device.Name = name
	}
	if len(uuids) > 0 {
		device.LastUUIDs = append([]string(nil), uuids...)
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(address, nickname string) {
	device := r.EnsureDevice(address)
	device.Nickname = nickname
}

// SetDefaultDevice validates and stores the default device address
func (r *Registry) SetDefaultDevice(address string) error {
	addr, err := bluez.NormalizeAddress(address)
	if err != nil {
		return err
	}
	r.prefs().DefaultDevice = addr
	return nil
}

// SetNewline validates and stores the default newline style
func (r *Registry) SetNewline(name string) error {
	nl, err := textutil.ParseNewline(name)
	if err != nil {
		return err
	}
	r.prefs().Newline = nl.Name()
	return nil
}

// SetDeviceNewline validates and stores a per-device newline override
func (r *Registry) SetDeviceNewline(address, name string) error {
	nl, err := textutil.ParseNewline(name)
	if err != nil {
		return err
	}
	r.EnsureDevice(address).Newline = nl.Name()
	return nil
}

// LookupAddress resolves an address or a device nickname to a normalized
// address. Nicknames match case-insensitively.
func (r *Registry) LookupAddress(nameOrAddress string) (string, error) {
	if addr, err := bluez.NormalizeAddress(nameOrAddress); err == nil {
		return addr, nil
	}
	for addr, d := range r.Devices {
		if d != nil && d.Nickname != "" && strings.EqualFold(d.Nickname, nameOrAddress) {
			return addr, nil
		}
	}
	return "", fmt.Errorf("%q is neither a device address nor a known nickname", nameOrAddress)
}

// DefaultDevice returns the configured default address
func (r *Registry) DefaultDevice() string {
	if r.Preferences == nil || r.Preferences.DefaultDevice == "" {
		return DefaultDeviceAddress
	}
	return r.Preferences.DefaultDevice
}

// NewlineFor returns the newline style for address: the device override
// if set, otherwise the global preference.
func (r *Registry) NewlineFor(address string) (textutil.Newline, error) {
	name := r.prefs().Newline
	if d := r.GetDevice(address); d != nil && d.Newline != "" {
		name = d.Newline
	}
	if name == "" {
		return textutil.DefaultNewline, nil
	}
	return textutil.ParseNewline(name)
}

// Validate checks that every stored value can be used
func (r *Registry) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", r.Version, CurrentVersion)
	}
	p := r.prefs()
	if p.Newline != "" {
		if _, err := textutil.ParseNewline(p.Newline); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
	}
	if p.DefaultDevice != "" {
		if _, err := bluez.NormalizeAddress(p.DefaultDevice); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
	}
	for addr, d := range r.Devices {
		if d == nil {
			continue
		}
		if d.Newline != "" {
			if _, err := textutil.ParseNewline(d.Newline); err != nil {
				return fmt.Errorf("device %s: %w", addr, err)
			}
		}
		if d.Channel < 0 || d.Channel > 30 {
			return fmt.Errorf("device %s: channel %d out of range 1-30", addr, d.Channel)
		}
	}
	return nil
}

func (r *Registry) prefs() *Preferences {
	if r.Preferences == nil {
		r.Preferences = NewPreferences()
	}
	return r.Preferences
}
