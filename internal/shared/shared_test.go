package shared

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountedConn_CountsAndClosesOnce(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	var up, down atomic.Uint64
	c := NewCountedConn(a, &up, &down)

	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(b, buf)
		_, _ = b.Write([]byte("abc"))
	}()

	n, err := c.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 8)
	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	assert.Equal(t, uint64(5), up.Load())
	assert.Equal(t, uint64(3), down.Load())

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestThreadSafeBuffer(t *testing.T) {
	b := NewThreadSafeBuffer()
	_, _ = b.Write([]byte("line one\n"))
	assert.Equal(t, 9, b.Len())
	assert.Equal(t, "line one\n", b.String())

	p := make([]byte, 4)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "line", string(p[:n]))
	assert.Equal(t, " one\n", b.String())
}

func TestWebSocketConnAdapter_StreamAndNormalClose(t *testing.T) {
	received := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewWebSocketConnAdapter(ws)
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- string(data)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	conn := NewWebSocketConnAdapter(ws)
	_, err = conn.Write([]byte("Hello, "))
	require.NoError(t, err)
	_, err = conn.Write([]byte{})
	require.NoError(t, err)
	_, err = conn.Write([]byte("Server!"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	assert.Equal(t, "Hello, Server!", <-received)
}
