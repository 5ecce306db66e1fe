// Package transport provides the byte-stream sockets btterm can open.
//
// Four transports are available:
//
//   - rfcomm: a classic Bluetooth RFCOMM socket (Linux only)
//   - ble: the Nordic UART service over Bluetooth Low Energy
//   - tty: a serial device node such as /dev/rfcomm0
//   - tcp: a TCP serial bridge (ser2net and similar)
//
// Every socket implements serial.Socket. Open failures and I/O failures are
// returned as *Error so callers can tell configuration problems apart from
// connection problems.
package transport
