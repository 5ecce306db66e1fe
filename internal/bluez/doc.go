// Package bluez resolves Bluetooth device addresses to device records.
//
// On Linux the Client reads device properties from BlueZ over the system
// D-Bus (org.bluez.Device1). When BlueZ is not reachable, StaticResolver
// accepts any well-formed address and returns a bare Device so transports
// that do not need BlueZ (TTY, TCP) keep working.
package bluez
