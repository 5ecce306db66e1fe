package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name: "bridge with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "workbench"},
				HostName:      "esp-bridge.local.",
				Port:          2000,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"baud=115200"},
			},
			wantInstance: "workbench",
			wantIP:       "192.168.4.16",
			wantPort:     2000,
		},
		{
			name: "no port specified (should default to 23)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "lab"},
				HostName:      "lab.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantInstance: "lab",
			wantIP:       "172.16.0.1",
			wantPort:     DefaultBridgePort,
		},
		{
			name: "instance falls back to hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "esp-bridge.local.",
				Port:     23,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantInstance: "esp-bridge",
			wantIP:       "10.0.0.5",
			wantPort:     23,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "esp-bridge.local.",
				Port:     23,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
		{
			name: "IPv6 only bridge",
			entry: &zeroconf.ServiceEntry{
				HostName: "v6.local.",
				Port:     23,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantInstance: "v6",
			wantIP:       "fe80::1",
			wantPort:     23,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				HostName: "dual.local.",
				Port:     23,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantInstance: "dual",
			wantIP:       "192.168.1.50",
			wantPort:     23,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := scanner.parseServiceEntry("_ser2net._tcp", tt.entry)

			if tt.wantNil {
				if bridge != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", bridge)
				}
				return
			}

			if bridge == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil bridge")
			}
			if bridge.Instance != tt.wantInstance {
				t.Errorf("bridge.Instance = %v, want %v", bridge.Instance, tt.wantInstance)
			}
			if bridge.IP != tt.wantIP {
				t.Errorf("bridge.IP = %v, want %v", bridge.IP, tt.wantIP)
			}
			if bridge.Port != tt.wantPort {
				t.Errorf("bridge.Port = %v, want %v", bridge.Port, tt.wantPort)
			}
			if bridge.Service != "_ser2net._tcp" {
				t.Errorf("bridge.Service = %v", bridge.Service)
			}
			if time.Since(bridge.DiscoveredAt) > time.Second {
				t.Errorf("bridge.DiscoveredAt is not recent: %v", bridge.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		HostName: "esp-bridge.local.",
		Port:     23,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
		Text:     []string{"baud=115200", "mode=8N1", "raw", "tag=a=b"},
	}

	bridge := scanner.parseServiceEntry("_telnet._tcp", entry)
	if bridge == nil {
		t.Fatal("parseServiceEntry() = nil, want bridge")
	}

	expectedMetadata := map[string]string{
		"baud": "115200",
		"mode": "8N1",
		"raw":  "",
		"tag":  "a=b",
	}

	if len(bridge.Metadata) != len(expectedMetadata) {
		t.Errorf("bridge.Metadata has %d entries, want %d", len(bridge.Metadata), len(expectedMetadata))
	}
	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := bridge.Metadata[key]; !ok {
			t.Errorf("bridge.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("bridge.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
	if len(scanner.ServiceTypes) != len(DefaultServiceTypes) {
		t.Errorf("scanner.ServiceTypes = %v", scanner.ServiceTypes)
	}

	// Callers may edit the list without touching the package default
	scanner.ServiceTypes[0] = "_other._tcp"
	if DefaultServiceTypes[0] == "_other._tcp" {
		t.Error("NewScanner() should copy DefaultServiceTypes")
	}
}

func TestSortBridges(t *testing.T) {
	bridges := []*Bridge{
		{Instance: "b", IP: "10.0.0.2", Port: 23},
		{Instance: "a", IP: "10.0.0.9", Port: 23},
		{Instance: "a", IP: "10.0.0.1", Port: 23},
	}
	sortBridges(bridges)

	want := []string{"10.0.0.1:23", "10.0.0.9:23", "10.0.0.2:23"}
	for i, b := range bridges {
		if b.Addr() != want[i] {
			t.Errorf("bridges[%d] = %v, want %v", i, b.Addr(), want[i])
		}
	}
}
