// Package config provides user configuration management for btterm.
//
// This package manages a YAML-based configuration file that stores per-device
// connection settings (transport, RFCOMM channel, TTY path, TCP bridge) and
// application preferences such as the default device and newline style.
// Session data (log lines, connection state) is never written here.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/btterm/config.yaml or $HOME/.config/btterm/config.yaml
//   - macOS: $HOME/.config/btterm/config.yaml
//   - Windows: %LOCALAPPDATA%\btterm\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	device := registry.EnsureDevice("48:e7:29:9f:90:06")
//	device.Nickname = "Workbench HC-05"
//	device.Transport = "rfcomm"
//
//	if err := registry.SetNewline("lf"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Device keys are always upper-case MAC addresses; every accessor normalizes
// the address it is given.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
