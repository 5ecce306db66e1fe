package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/btterm/internal/logging"
)

const (
	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultBridgePort is assumed when an entry carries no port
	DefaultBridgePort = 23
)

// DefaultServiceTypes are the mDNS service types serial bridges advertise
var DefaultServiceTypes = []string{"_ser2net._tcp", "_telnet._tcp"}

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration

	// ServiceTypes are browsed in parallel
	ServiceTypes []string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:      DefaultScanTimeout,
		ServiceTypes: append([]string(nil), DefaultServiceTypes...),
	}
}

// ScanForBridges discovers serial bridges on the local network
func (s *Scanner) ScanForBridges() ([]*Bridge, error) {
	return s.ScanForBridgesWithContext(context.Background())
}

// ScanForBridgesWithContext discovers bridges with a custom context.
// Results are deduplicated by address and sorted by instance name.
func (s *Scanner) ScanForBridgesWithContext(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		bridges = make(map[string]*Bridge)
	)

	for _, service := range s.ServiceTypes {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
		}

		entries := make(chan *zeroconf.ServiceEntry)
		wg.Add(1)
		go func(service string) {
			defer wg.Done()
			for entry := range entries {
				bridge := s.parseServiceEntry(service, entry)
				if bridge == nil {
					continue
				}
				logging.Debug("Discovered serial bridge",
					zap.String("instance", bridge.Instance),
					zap.String("addr", bridge.Addr()),
				)
				mu.Lock()
				bridges[bridge.Addr()] = bridge
				mu.Unlock()
			}
		}(service)

		if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
			return nil, fmt.Errorf("failed to browse for %s: %w", service, err)
		}
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	// The resolver closes each entries channel once its browse has stopped
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(time.Second):
		logging.Debug("mDNS resolver did not close its entry channel in time")
	}

	mu.Lock()
	defer mu.Unlock()

	out := make([]*Bridge, 0, len(bridges))
	for _, b := range bridges {
		out = append(out, b)
	}
	sortBridges(out)
	return out, nil
}

func sortBridges(bridges []*Bridge) {
	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].Instance != bridges[j].Instance {
			return bridges[i].Instance < bridges[j].Instance
		}
		return bridges[i].Addr() < bridges[j].Addr()
	})
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil if the entry has no usable address.
func (s *Scanner) parseServiceEntry(service string, entry *zeroconf.ServiceEntry) *Bridge {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultBridgePort
	}

	instance := entry.Instance
	if instance == "" {
		instance = strings.TrimSuffix(strings.TrimSuffix(entry.HostName, "."), ".local")
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Bridge{
		Instance:     instance,
		Service:      service,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForBridges is a convenience function to scan with a custom timeout
func ScanForBridges(timeout time.Duration) ([]*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForBridges()
}
