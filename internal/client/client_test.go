package client

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sockhello/internal/shared/types"
)

func loopbackConfig(port int) *types.Config {
	cfg := types.DefaultConfig()
	cfg.ClientConf.Address = "127.0.0.1"
	cfg.ClientConf.Port = port
	return cfg
}

func TestSend_WritesWholeMessageThenCloses(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn) // returns once the client closes
		received <- data
	}()

	c := New(loopbackConfig(ln.Addr().(*net.TCPAddr).Port))
	require.NoError(t, c.Send(context.Background()))

	select {
	case data := <-received:
		assert.Equal(t, "Hello, Server!", string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("server side never saw the connection close")
	}
	assert.Equal(t, uint64(len("Hello, Server!")), c.BytesSent())
}

func TestSend_ConnectionRefusedIsNotRetried(t *testing.T) {
	// Reserve a port, then free it so nothing is listening there.
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c := New(loopbackConfig(port))
	start := time.Now()
	err = c.Send(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, c.BytesSent())
}

func TestSend_SingleDialAttempt(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var accepted atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			_, _ = io.Copy(io.Discard, conn)
			conn.Close()
		}
	}()

	c := New(loopbackConfig(ln.Addr().(*net.TCPAddr).Port))
	require.NoError(t, c.Send(context.Background()))
	require.Eventually(t, func() bool { return accepted.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), accepted.Load())
}

func TestSend_InvalidProxy(t *testing.T) {
	cfg := loopbackConfig(9292)
	cfg.ClientConf.Proxy = "gopher://127.0.0.1:70"

	err := New(cfg).Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported proxy")
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "172.18.0.2:9292", New(types.DefaultConfig()).Target())
}
