package transport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transport failures
type ErrorKind int

const (
	// KindUnsupported means the transport is not available on this platform
	KindUnsupported ErrorKind = iota
	// KindConfig means the socket could not be built from the given options
	KindConfig
	// KindOpen means the connection could not be established
	KindOpen
	// KindIO means an established connection failed
	KindIO
)

// String returns a human-readable name for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindConfig:
		return "config"
	case KindOpen:
		return "open"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a classified transport failure
type Error struct {
	Kind ErrorKind
	Op   string // transport name, e.g. "rfcomm"
	Addr string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a transport *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// ErrSocketClosed is returned by Open after Close has been called
var ErrSocketClosed = errors.New("socket closed")

func newError(kind ErrorKind, op, addr string, err error) *Error {
	return &Error{Kind: kind, Op: op, Addr: addr, Err: err}
}
