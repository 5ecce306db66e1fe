//go:build !linux

package transport

import (
	"context"
	"errors"
)

// Open always fails: RFCOMM sockets need the Linux Bluetooth stack.
// Bind the device to a TTY or use the ble transport instead.
func (s *RFCOMMSocket) Open(ctx context.Context) error {
	return newError(KindUnsupported, string(RFCOMM), s.address, errors.New("rfcomm sockets are only available on linux"))
}
