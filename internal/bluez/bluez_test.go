package bluez

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"00001101-0000-1000-8000-00805F9B34FB", SerialPortUUID, false},
		{"1101", SerialPortUUID, false},
		{"0x1101", SerialPortUUID, false},
		{"00001101", SerialPortUUID, false},
		{"6E400001-B5A3-F393-E0A9-E50E24DCCA9E", NordicUARTServiceUUID, false},
		{"not-a-uuid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeUUID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeUUID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeUUID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"48:E7:29:9F:90:06", "48:E7:29:9F:90:06", false},
		{"48:e7:29:9f:90:06", "48:E7:29:9F:90:06", false},
		{" 48:E7:29:9F:90:06 ", "48:E7:29:9F:90:06", false},
		{"48:E7:29", "", true},
		{"hello", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeAddress(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeAddress(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("error %v is not ErrInvalidAddress", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDevicePath(t *testing.T) {
	got := DevicePath("hci0", "48:e7:29:9f:90:06")
	want := "/org/bluez/hci0/dev_48_E7_29_9F_90_06"
	if got != want {
		t.Errorf("DevicePath() = %q, want %q", got, want)
	}
}

func TestDeviceFromProperties(t *testing.T) {
	props := map[string]dbus.Variant{
		"Address":   dbus.MakeVariant("48:e7:29:9f:90:06"),
		"Name":      dbus.MakeVariant("HC-05"),
		"Alias":     dbus.MakeVariant("Workbench"),
		"Paired":    dbus.MakeVariant(true),
		"Connected": dbus.MakeVariant(false),
		"RSSI":      dbus.MakeVariant(int16(-61)),
		"UUIDs":     dbus.MakeVariant([]string{"00001101-0000-1000-8000-00805F9B34FB", "garbage"}),
	}

	dev := deviceFromProperties("/org/bluez/hci0/dev_48_E7_29_9F_90_06", props)

	if dev.Address != "48:E7:29:9F:90:06" {
		t.Errorf("Address = %q", dev.Address)
	}
	if dev.DisplayName() != "Workbench" {
		t.Errorf("DisplayName() = %q, want alias", dev.DisplayName())
	}
	if !dev.Paired || dev.Connected {
		t.Errorf("Paired/Connected = %v/%v", dev.Paired, dev.Connected)
	}
	if dev.RSSI != -61 {
		t.Errorf("RSSI = %d", dev.RSSI)
	}
	if len(dev.UUIDs) != 1 || dev.FirstUUID() != SerialPortUUID {
		t.Errorf("UUIDs = %v, want only SPP", dev.UUIDs)
	}
	if !dev.SupportsSerialPort() || dev.SupportsNordicUART() {
		t.Error("service detection mismatch")
	}
}

func TestDevicesFromObjects(t *testing.T) {
	objects := managedObjects{
		"/org/bluez/hci0": {
			"org.bluez.Adapter1": {"Address": dbus.MakeVariant("00:11:22:33:44:55")},
		},
		"/org/bluez/hci0/dev_AA_AA_AA_AA_AA_AA": {
			deviceInterface: {
				"Address": dbus.MakeVariant("AA:AA:AA:AA:AA:AA"),
				"Name":    dbus.MakeVariant("zeta"),
			},
		},
		"/org/bluez/hci0/dev_BB_BB_BB_BB_BB_BB": {
			deviceInterface: {
				"Address": dbus.MakeVariant("BB:BB:BB:BB:BB:BB"),
				"Name":    dbus.MakeVariant("alpha"),
			},
		},
		"/org/bluez/hci1/dev_CC_CC_CC_CC_CC_CC": {
			deviceInterface: {"Address": dbus.MakeVariant("CC:CC:CC:CC:CC:CC")},
		},
	}

	devices := devicesFromObjects(objects, "hci0")

	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].Name != "alpha" || devices[1].Name != "zeta" {
		t.Errorf("devices not sorted by name: %q, %q", devices[0].Name, devices[1].Name)
	}
}

func TestClassifyCallError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown object", dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownObject"}, ErrUnknownDevice},
		{"unknown method", dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownMethod"}, ErrUnknownDevice},
		{"service unknown", dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyCallError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classifyCallError() = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("timeout")
	if got := classifyCallError(other); got != other {
		t.Errorf("unclassified error changed: %v", got)
	}
}

type stubResolver struct {
	dev *Device
	err error
}

func (s stubResolver) Resolve(ctx context.Context, address string) (*Device, error) {
	return s.dev, s.err
}

func TestFallbackResolver(t *testing.T) {
	ctx := context.Background()

	unavailable := FallbackResolver{
		Primary:  stubResolver{err: describe("x", ErrUnavailable)},
		Fallback: StaticResolver{UUIDs: []string{SerialPortUUID}},
	}
	dev, err := unavailable.Resolve(ctx, "48:E7:29:9F:90:06")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if dev.FirstUUID() != SerialPortUUID {
		t.Errorf("fallback device UUIDs = %v", dev.UUIDs)
	}

	unknown := FallbackResolver{
		Primary:  stubResolver{err: describe("x", ErrUnknownDevice)},
		Fallback: StaticResolver{},
	}
	if _, err := unknown.Resolve(ctx, "48:E7:29:9F:90:06"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("Resolve() error = %v, want ErrUnknownDevice", err)
	}

	unknown.UnknownOK = true
	dev, err = unknown.Resolve(ctx, "48:e7:29:9f:90:06")
	if err != nil {
		t.Fatalf("Resolve() with UnknownOK error = %v", err)
	}
	if dev.Address != "48:E7:29:9F:90:06" {
		t.Errorf("fallback Address = %q", dev.Address)
	}

	// UnknownOK does not hide other failures
	broken := FallbackResolver{
		Primary:   stubResolver{err: ErrInvalidAddress},
		Fallback:  StaticResolver{},
		UnknownOK: true,
	}
	if _, err := broken.Resolve(ctx, "48:E7:29:9F:90:06"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Resolve() error = %v, want ErrInvalidAddress", err)
	}
}

func TestStaticResolver_InvalidAddress(t *testing.T) {
	if _, err := (StaticResolver{}).Resolve(context.Background(), "nope"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Resolve() error = %v, want ErrInvalidAddress", err)
	}
}

func TestStaticResolver_LowercaseAddress(t *testing.T) {
	dev, err := (StaticResolver{}).Resolve(context.Background(), "48:e7:29:9f:90:06")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if dev.Address != "48:E7:29:9F:90:06" {
		t.Errorf("Address = %q, want upper-case", dev.Address)
	}
}
