//go:build linux

package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"sockhello/internal/shared/globalstate"
)

func TestListenTCP_LeavesReuseAddrUnset(t *testing.T) {
	lifecycle := globalstate.NewLifecycle()
	ln, err := listenTCP("127.0.0.1", 0, 1, lifecycle)
	require.NoError(t, err)
	defer ln.Close()
	assert.Equal(t, globalstate.Listening, lifecycle.Get())

	tcpLn, ok := ln.(*net.TCPListener)
	require.True(t, ok, "listener is %T", ln)
	raw, err := tcpLn.SyscallConn()
	require.NoError(t, err)

	var reuse int
	var sockErr error
	require.NoError(t, raw.Control(func(fd uintptr) {
		reuse, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR)
	}))
	require.NoError(t, sockErr)
	assert.Zero(t, reuse)
}
