//go:build !linux

package server

import (
	"context"
	"fmt"
	"net"

	"sockhello/internal/shared/globalstate"
)

// listenTCP on non-Linux systems cannot pick the backlog; the system
// default applies, and the runtime sets SO_REUSEADDR on its own.
func listenTCP(address string, port, _ int, lifecycle *globalstate.Lifecycle) (net.Listener, error) {
	ip, err := resolveIPv4(address)
	if err != nil {
		return nil, err
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp4", net.JoinHostPort(ip.String(), fmt.Sprint(port)))
	if err != nil {
		return nil, err
	}
	for _, next := range []globalstate.State{globalstate.Bound, globalstate.Listening} {
		if err := lifecycle.Advance(next); err != nil {
			_ = listener.Close()
			return nil, err
		}
	}
	return listener, nil
}
