//go:build linux

package transport

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// pollIntervalMs bounds how long Open waits between cancellation checks
const pollIntervalMs = 200

// Open connects the RFCOMM socket. The connect runs non-blocking so ctx and
// Close can abort it.
func (s *RFCOMMSocket) Open(ctx context.Context) error {
	select {
	case <-s.done:
		return newError(KindOpen, string(RFCOMM), s.address, ErrSocketClosed)
	default:
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		if errors.Is(err, unix.EAFNOSUPPORT) {
			return newError(KindUnsupported, string(RFCOMM), s.address, err)
		}
		return newError(KindOpen, string(RFCOMM), s.address, err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: s.bdaddr, Channel: s.channel}
	if err := unix.Connect(fd, sa); err != nil && !errors.Is(err, unix.EINPROGRESS) {
		unix.Close(fd)
		return newError(KindOpen, string(RFCOMM), s.address, err)
	}

	if err := s.waitConnected(ctx, fd); err != nil {
		unix.Close(fd)
		return newError(KindOpen, string(RFCOMM), s.address, err)
	}

	// The fd is non-blocking, so os.NewFile hands it to the runtime poller
	// and Close unblocks a pending Read.
	return s.adopt(os.NewFile(uintptr(fd), s.String()))
}

func (s *RFCOMMSocket) waitConnected(ctx context.Context, fd int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return ErrSocketClosed
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(fds, pollIntervalMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return err
		}
		if soErr != 0 {
			return unix.Errno(soErr)
		}
		return nil
	}
}
