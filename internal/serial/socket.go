package serial

import (
	"context"
	"io"
)

// Socket is a bidirectional byte stream to one remote device.
//
// Open blocks until the stream is usable or ctx is done. Close must be safe to
// call before Open has returned and more than once; it unblocks a pending Read.
type Socket interface {
	io.ReadWriteCloser
	Open(ctx context.Context) error
	String() string
}
