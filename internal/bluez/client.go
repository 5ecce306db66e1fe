package bluez

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

const (
	busName         = "org.bluez"
	deviceInterface = "org.bluez.Device1"

	methodGetAll            = "org.freedesktop.DBus.Properties.GetAll"
	methodGetManagedObjects = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"

	errUnknownObject  = "org.freedesktop.DBus.Error.UnknownObject"
	errUnknownMethod  = "org.freedesktop.DBus.Error.UnknownMethod"
	errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"

	// DefaultAdapter is the adapter used when none is configured
	DefaultAdapter = "hci0"
)

// managedObjects is the reply shape of GetManagedObjects
type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Client talks to BlueZ over the system bus
type Client struct {
	conn    *dbus.Conn
	adapter string
}

// NewClient connects to the system bus. The adapter defaults to hci0.
func NewClient(adapter string) (*Client, error) {
	if adapter == "" {
		adapter = DefaultAdapter
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Client{conn: conn, adapter: adapter}, nil
}

// Close releases the bus connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Adapter returns the adapter name the client looks devices up on
func (c *Client) Adapter() string {
	return c.adapter
}

// Resolve reads the Device1 properties of address
func (c *Client) Resolve(ctx context.Context, address string) (*Device, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	path := DevicePath(c.adapter, addr)
	obj := c.conn.Object(busName, dbus.ObjectPath(path))

	var props map[string]dbus.Variant
	if err := obj.CallWithContext(ctx, methodGetAll, 0, deviceInterface).Store(&props); err != nil {
		return nil, describe(addr, classifyCallError(err))
	}

	dev := deviceFromProperties(path, props)
	if dev.Address == "" {
		dev.Address = addr
	}
	logging.Debug("Resolved device",
		zap.String("address", dev.Address),
		zap.String("name", dev.DisplayName()),
		zap.Strings("uuids", dev.UUIDs),
	)
	return dev, nil
}

// ListDevices returns every device BlueZ knows about on the adapter, sorted
// by display name. With pairedOnly set, unpaired devices are skipped.
func (c *Client) ListDevices(ctx context.Context, pairedOnly bool) ([]Device, error) {
	obj := c.conn.Object(busName, "/")

	objects := make(managedObjects)
	if err := obj.CallWithContext(ctx, methodGetManagedObjects, 0).Store(&objects); err != nil {
		return nil, fmt.Errorf("list devices: %w", classifyCallError(err))
	}

	devices := devicesFromObjects(objects, c.adapter)
	if !pairedOnly {
		return devices, nil
	}
	paired := devices[:0]
	for _, d := range devices {
		if d.Paired || d.Bonded {
			paired = append(paired, d)
		}
	}
	return paired, nil
}

// classifyCallError maps BlueZ D-Bus errors onto package sentinels
func classifyCallError(err error) error {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		switch dbusErr.Name {
		case errUnknownObject, errUnknownMethod:
			return fmt.Errorf("%w: %v", ErrUnknownDevice, err)
		case errServiceUnknown:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}

func devicesFromObjects(objects managedObjects, adapter string) []Device {
	prefix := fmt.Sprintf("/org/bluez/%s/", adapter)

	var devices []Device
	for path, ifaces := range objects {
		props, ok := ifaces[deviceInterface]
		if !ok || !strings.HasPrefix(string(path), prefix) {
			continue
		}
		devices = append(devices, *deviceFromProperties(string(path), props))
	}

	sort.Slice(devices, func(i, j int) bool {
		a, b := devices[i].DisplayName(), devices[j].DisplayName()
		if a != b {
			return a < b
		}
		return devices[i].Address < devices[j].Address
	})
	return devices
}

func deviceFromProperties(path string, props map[string]dbus.Variant) *Device {
	dev := &Device{Path: path}

	if v, ok := props["Address"].Value().(string); ok {
		dev.Address = strings.ToUpper(v)
	}
	if v, ok := props["Name"].Value().(string); ok {
		dev.Name = v
	}
	if v, ok := props["Alias"].Value().(string); ok {
		dev.Alias = v
	}
	if v, ok := props["Paired"].Value().(bool); ok {
		dev.Paired = v
	}
	if v, ok := props["Bonded"].Value().(bool); ok {
		dev.Bonded = v
	}
	if v, ok := props["Connected"].Value().(bool); ok {
		dev.Connected = v
	}
	if v, ok := props["Trusted"].Value().(bool); ok {
		dev.Trusted = v
	}
	if v, ok := props["RSSI"].Value().(int16); ok {
		dev.RSSI = v
	}
	if v, ok := props["UUIDs"].Value().([]string); ok {
		for _, u := range v {
			if n, err := NormalizeUUID(u); err == nil {
				dev.UUIDs = append(dev.UUIDs, n)
			}
		}
	}
	return dev
}
