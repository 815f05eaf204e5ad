package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"sockhello/internal/shared"
)

var errUpgradeAborted = errors.New("peer closed before completing the websocket handshake")

// newUpgrader sizes the websocket I/O buffers like the drain buffer.
func newUpgrader(bufferSize int) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  bufferSize,
		WriteBufferSize: bufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins
	}
}

// singleConnListener hands out one already-accepted connection, then blocks
// until closed. It lets http.Server run the handshake on that connection only.
type singleConnListener struct {
	conn      net.Conn
	once      sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

func newSingleConnListener(conn net.Conn) *singleConnListener {
	return &singleConnListener{conn: conn, done: make(chan struct{})}
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	var c net.Conn
	l.once.Do(func() { c = l.conn })
	if c != nil {
		return c, nil
	}
	<-l.done
	return nil, net.ErrClosed
}

func (l *singleConnListener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *singleConnListener) Addr() net.Addr { return l.conn.LocalAddr() }

type upgradeResult struct {
	conn net.Conn
	err  error
}

// upgradeWebSocket performs the HTTP upgrade on conn and returns a net.Conn
// carrying the websocket's binary payload as a byte stream.
func upgradeWebSocket(ctx context.Context, conn net.Conn, bufferSize int) (net.Conn, error) {
	upgrader := newUpgrader(bufferSize)
	result := make(chan upgradeResult, 1)
	report := func(r upgradeResult) {
		select {
		case result <- r:
		default:
		}
	}

	httpServer := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				report(upgradeResult{err: err})
				return
			}
			report(upgradeResult{conn: shared.NewWebSocketConnAdapter(ws)})
		}),
		ConnState: func(_ net.Conn, state http.ConnState) {
			if state == http.StateClosed {
				report(upgradeResult{err: errUpgradeAborted})
			}
		},
	}

	listener := newSingleConnListener(conn)
	go func() { _ = httpServer.Serve(listener) }()
	// Hijacked connections are no longer tracked, so Close leaves the
	// upgraded one open.
	defer httpServer.Close()

	select {
	case r := <-result:
		if r.err != nil {
			_ = conn.Close()
		}
		return r.conn, r.err
	case <-ctx.Done():
		_ = conn.Close()
		return nil, ctx.Err()
	}
}
