// Package client implements the one-shot sender: connect, write the
// configured message in full, close.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	"sockhello/internal/shared"
	"sockhello/internal/shared/logger"
	"sockhello/internal/shared/types"
)

type Client struct {
	cfg    *types.Config
	logger zerolog.Logger

	uplinkBytes   atomic.Uint64
	downlinkBytes atomic.Uint64
}

func New(cfg *types.Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger.WithComponent("client"),
	}
}

// Target returns host:port of the server the client dials.
func (c *Client) Target() string {
	return net.JoinHostPort(c.cfg.ClientConf.Address, strconv.Itoa(c.cfg.ClientConf.Port))
}

// BytesSent reports how many message bytes reached the socket.
func (c *Client) BytesSent() uint64 {
	return c.uplinkBytes.Load()
}

// Send dials once, writes the whole message and closes the connection.
// A dial failure is returned as is; there is no retry.
func (c *Client) Send(ctx context.Context) error {
	target := c.Target()
	l := c.logger.With().
		Str("session_id", uuid.NewString()).
		Str("target", target).
		Str("transport", c.cfg.CommonConf.Transport).
		Logger()

	l.Debug().Msg("Connecting.")
	conn, err := c.dial(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	counted := shared.NewCountedConn(conn, &c.uplinkBytes, &c.downlinkBytes)
	l.Info().Str("local_addr", counted.LocalAddr().String()).Msg("Connected.")

	stop := context.AfterFunc(ctx, func() { _ = counted.Close() })
	_, writeErr := io.WriteString(counted, c.cfg.ClientConf.Message)
	stop()
	closeErr := counted.Close()

	if writeErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to send message to %s: %w", target, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close connection to %s: %w", target, closeErr)
	}

	l.Info().Uint64("bytes_sent", c.uplinkBytes.Load()).Msg("Message sent, connection closed.")
	return nil
}

func (c *Client) dial(ctx context.Context, target string) (net.Conn, error) {
	dialer, err := c.netDialer()
	if err != nil {
		return nil, err
	}

	if c.cfg.CommonConf.Transport != types.TransportWebSocket {
		return dialer.DialContext(ctx, "tcp4", target)
	}

	wsDialer := websocket.Dialer{
		NetDialContext:   dialer.DialContext,
		HandshakeTimeout: c.cfg.ClientConf.DialTimeout,
	}
	wsURL := url.URL{Scheme: "ws", Host: target, Path: c.cfg.ClientConf.WSPath}
	ws, resp, err := wsDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %s: %w", resp.Status, err)
		}
		return nil, err
	}
	return shared.NewWebSocketConnAdapter(ws), nil
}

// netDialer returns the direct dialer, or a proxy dialer when client.proxy
// is set (e.g. socks5://127.0.0.1:1080).
func (c *Client) netDialer() (proxy.ContextDialer, error) {
	direct := &net.Dialer{Timeout: c.cfg.ClientConf.DialTimeout}
	if c.cfg.ClientConf.Proxy == "" {
		return direct, nil
	}

	proxyURL, err := url.Parse(c.cfg.ClientConf.Proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", c.cfg.ClientConf.Proxy, err)
	}
	d, err := proxy.FromURL(proxyURL, direct)
	if err != nil {
		return nil, fmt.Errorf("unsupported proxy %q: %w", c.cfg.ClientConf.Proxy, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy %q does not support context dialing", c.cfg.ClientConf.Proxy)
	}
	return cd, nil
}
