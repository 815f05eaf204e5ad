//go:build linux

package server

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"sockhello/internal/shared/errors"
	"sockhello/internal/shared/globalstate"
)

// listenTCP builds the listening socket by hand so the requested backlog is
// passed to listen(2); net.Listen always uses the system maximum.
// SO_REUSEADDR is left unset, so a port still in TIME_WAIT is refused.
func listenTCP(address string, port, backlog int, lifecycle *globalstate.Lifecycle) (net.Listener, error) {
	ip, err := resolveIPv4(address)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, errors.NewError("failed to create socket").Base(err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = unix.Close(fd)
		}
	}()

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		return nil, errors.NewError("failed to bind ", net.JoinHostPort(address, fmt.Sprint(port))).Base(err)
	}
	if err := lifecycle.Advance(globalstate.Bound); err != nil {
		return nil, err
	}

	if err := unix.Listen(fd, backlog); err != nil {
		return nil, errors.NewError("failed to listen with backlog ", backlog).Base(err)
	}

	f := os.NewFile(uintptr(fd), "tcp-listener")
	keep = true
	// FileListener dups the descriptor, so f must be closed either way.
	listener, err := net.FileListener(f)
	_ = f.Close()
	if err != nil {
		return nil, errors.NewError("failed to wrap listening socket").Base(err)
	}
	if err := lifecycle.Advance(globalstate.Listening); err != nil {
		_ = listener.Close()
		return nil, err
	}
	return listener, nil
}
