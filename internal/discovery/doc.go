// Package discovery finds devices btterm can connect to.
//
// Two discovery mechanisms are provided:
//
//   - BLE scanning (BLEScanner) lists advertising Bluetooth Low Energy devices,
//     flagging those that expose the Nordic UART service.
//   - mDNS browsing (Scanner) locates TCP serial bridges such as ser2net or
//     ESP32 telnet bridges advertising "_ser2net._tcp" or "_telnet._tcp".
//
// # Usage Example
//
//	bridges, err := discovery.ScanForBridges(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range bridges {
//	    fmt.Printf("Found: %s at %s\n", b.Instance, b.Addr())
//	}
//
// # Network Requirements
//
// - mDNS requires multicast support on the network interface and UDP port 5353
// - BLE scanning requires a powered Bluetooth adapter (BlueZ on Linux)
//
// # Thread Safety
//
// Scanners are safe for concurrent use. Multiple discovery sessions can run
// simultaneously, although BLE scans share the system adapter.
package discovery
