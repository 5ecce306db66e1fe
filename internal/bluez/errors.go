package bluez

import "errors"

var (
	// ErrInvalidAddress is returned for malformed MAC addresses
	ErrInvalidAddress = errors.New("invalid device address")

	// ErrUnknownDevice is returned when BlueZ has no record of the device
	ErrUnknownDevice = errors.New("unknown device")

	// ErrUnavailable is returned when BlueZ cannot be reached
	ErrUnavailable = errors.New("bluez unavailable")
)
