package serial

import "errors"

var (
	// ErrNotConnected is returned by Write when no socket is open
	ErrNotConnected = errors.New("not connected")

	// ErrBusy is returned by Connect while a socket is already held
	ErrBusy = errors.New("connection already in progress")

	// ErrClosed is returned once the Service has been closed
	ErrClosed = errors.New("serial service closed")

	// ErrListenerAttached is returned by Attach when another listener is active
	ErrListenerAttached = errors.New("another listener is already attached")
)
