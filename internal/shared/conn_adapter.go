package shared

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeFrameTimeout = time.Second

// WebSocketConnAdapter 实现了 net.Conn 接口，字节流承载在 binary 帧中。
// 对端发送正常的 close 帧时，Read 返回 io.EOF。
type WebSocketConnAdapter struct {
	*websocket.Conn
	readBuffer *ThreadSafeBuffer
	closeOnce  sync.Once
	closeErr   error
}

// NewWebSocketConnAdapter 供 client 拨号和 server 升级后使用
func NewWebSocketConnAdapter(ws *websocket.Conn) net.Conn {
	return &WebSocketConnAdapter{
		Conn:       ws,
		readBuffer: NewThreadSafeBuffer(),
	}
}

// Read 方法实现了 io.Reader 接口。
func (wsc *WebSocketConnAdapter) Read(b []byte) (int, error) {
	for wsc.readBuffer.Len() == 0 {
		msgType, msg, err := wsc.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		if msgType != websocket.BinaryMessage {
			return 0, fmt.Errorf("received non-binary message")
		}
		if _, err := wsc.readBuffer.Write(msg); err != nil {
			return 0, err
		}
	}
	return wsc.readBuffer.Read(b)
}

// Write 方法实现了 io.Writer 接口。
func (wsc *WebSocketConnAdapter) Write(b []byte) (int, error) {
	dataCopy := make([]byte, len(b))
	copy(dataCopy, b)
	err := wsc.Conn.WriteMessage(websocket.BinaryMessage, dataCopy)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close 先尽力发送 close 帧，再关闭底层连接。
func (wsc *WebSocketConnAdapter) Close() error {
	wsc.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = wsc.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeFrameTimeout))
		wsc.closeErr = wsc.Conn.Close()
	})
	return wsc.closeErr
}

func (wsc *WebSocketConnAdapter) LocalAddr() net.Addr  { return wsc.Conn.LocalAddr() }
func (wsc *WebSocketConnAdapter) RemoteAddr() net.Addr { return wsc.Conn.RemoteAddr() }
func (wsc *WebSocketConnAdapter) SetDeadline(t time.Time) error {
	_ = wsc.Conn.SetReadDeadline(t)
	return wsc.Conn.SetWriteDeadline(t)
}
func (wsc *WebSocketConnAdapter) SetReadDeadline(t time.Time) error {
	return wsc.Conn.SetReadDeadline(t)
}
func (wsc *WebSocketConnAdapter) SetWriteDeadline(t time.Time) error {
	return wsc.Conn.SetWriteDeadline(t)
}
