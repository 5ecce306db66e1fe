package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/muurk/btterm/internal/logging"
)

var nordicUARTService = mustParseUUID("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// BLEScanner lists advertising BLE devices
type BLEScanner struct {
	// Timeout bounds Scan; ScanStream runs until its context is done
	Timeout time.Duration

	// NamePrefix, if set, keeps only devices whose name starts with it
	NamePrefix string

	// UARTOnly keeps only devices advertising the Nordic UART service
	UARTOnly bool

	adapter *bluetooth.Adapter
}

// NewBLEScanner creates a scanner on the default adapter
func NewBLEScanner() *BLEScanner {
	return &BLEScanner{
		Timeout: DefaultScanTimeout,
		adapter: bluetooth.DefaultAdapter,
	}
}

// accept reports whether a device passes the scanner's filters
func (s *BLEScanner) accept(name string, uart bool) bool {
	if s.UARTOnly && !uart {
		return false
	}
	if s.NamePrefix != "" && !strings.HasPrefix(name, s.NamePrefix) {
		return false
	}
	return true
}

// ScanStream streams each newly seen device until ctx is canceled.
// The channel is closed when the scan stops.
func (s *BLEScanner) ScanStream(ctx context.Context) (<-chan BLEDevice, error) {
	if err := s.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable Bluetooth adapter: %w", err)
	}

	out := make(chan BLEDevice)
	seen := make(map[string]bool)
	var mu sync.Mutex

	handler := func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		uart := result.HasServiceUUID(nordicUARTService)
		if !s.accept(name, uart) {
			return
		}

		addr := strings.ToUpper(result.Address.String())
		mu.Lock()
		if seen[addr] {
			mu.Unlock()
			return
		}
		seen[addr] = true
		mu.Unlock()

		dev := BLEDevice{
			Address:      addr,
			Name:         name,
			RSSI:         int(result.RSSI),
			UART:         uart,
			DiscoveredAt: time.Now(),
		}
		select {
		case out <- dev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)

		scanErr := make(chan error, 1)
		go func() {
			// Scan blocks until StopScan is called
			scanErr <- s.adapter.Scan(handler)
		}()

		select {
		case <-ctx.Done():
			if err := s.adapter.StopScan(); err != nil {
				logging.Warn("Failed to stop BLE scan cleanly", zap.Error(err))
			}
			<-scanErr
		case err := <-scanErr:
			if err != nil {
				logging.Error("BLE scan failed", zap.Error(err))
			}
		}
	}()

	return out, nil
}

// Scan collects devices for the configured timeout, strongest signal first
func (s *BLEScanner) Scan(ctx context.Context) ([]BLEDevice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	stream, err := s.ScanStream(ctx)
	if err != nil {
		return nil, err
	}

	var devices []BLEDevice
	for dev := range stream {
		logging.Debug("Discovered BLE device",
			zap.String("address", dev.Address),
			zap.String("name", dev.Name),
			zap.Int("rssi", dev.RSSI),
		)
		devices = append(devices, dev)
	}
	sortBLEDevices(devices)
	return devices, nil
}

func sortBLEDevices(devices []BLEDevice) {
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].RSSI != devices[j].RSSI {
			return devices[i].RSSI > devices[j].RSSI
		}
		return devices[i].Address < devices[j].Address
	})
}
