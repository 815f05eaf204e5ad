// Package server implements the one-shot receiver: listen, accept a single
// peer, print every chunk it sends until it closes, then shut everything down.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sockhello/internal/shared"
	"sockhello/internal/shared/globalstate"
	"sockhello/internal/shared/logger"
	"sockhello/internal/shared/types"
)

// ErrInvalidUTF8 is returned by Serve when a chunk is not valid UTF-8 and
// lossy decoding is disabled.
var ErrInvalidUTF8 = errors.New("received bytes are not valid UTF-8")

type Server struct {
	cfg       *types.Config
	out       io.Writer
	logger    zerolog.Logger
	lifecycle *globalstate.Lifecycle
	listener  net.Listener

	uplinkBytes   atomic.Uint64
	downlinkBytes atomic.Uint64
}

// New creates a Server that prints to out (normally os.Stdout).
func New(cfg *types.Config, out io.Writer) *Server {
	return &Server{
		cfg:       cfg,
		out:       out,
		logger:    logger.WithComponent("server"),
		lifecycle: globalstate.NewLifecycle(),
	}
}

// InitializeListener binds and listens without blocking. It returns the
// port actually bound, which differs from the configured one when that is 0.
func (s *Server) InitializeListener() (int, error) {
	address := s.cfg.ServerConf.ListenAddress
	port := s.cfg.ServerConf.Port

	listener, err := listenTCP(address, port, s.cfg.ServerConf.Backlog, s.lifecycle)
	if err != nil {
		_ = s.lifecycle.Advance(globalstate.Closed)
		return 0, fmt.Errorf("server failed to listen on %s: %w", net.JoinHostPort(address, fmt.Sprint(port)), err)
	}
	s.listener = listener

	boundPort := listener.Addr().(*net.TCPAddr).Port
	s.logger.Info().
		Str("listen_addr", listener.Addr().String()).
		Int("backlog", s.cfg.ServerConf.Backlog).
		Str("transport", s.cfg.CommonConf.Transport).
		Msg("Server is listening.")
	fmt.Fprintf(s.out, "Listening on port %d...\n", boundPort)

	return boundPort, nil
}

// Addr returns the listener address, or nil before InitializeListener.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// State reports where the server is in its lifecycle.
func (s *Server) State() globalstate.State {
	return s.lifecycle.Get()
}

// Run is InitializeListener followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.InitializeListener(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts exactly one connection and drains it. The accepted
// connection is closed before the listener; both are closed exactly once on
// every path. Cancelling ctx unblocks Accept and Read.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server: Serve called before InitializeListener")
	}
	defer s.closeListener()

	stopAccept := context.AfterFunc(ctx, func() { _ = s.listener.Close() })
	rawConn, err := s.listener.Accept()
	stopAccept()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("accept failed: %w", err)
	}

	conn := net.Conn(rawConn)
	if s.cfg.CommonConf.Transport == types.TransportWebSocket {
		conn, err = upgradeWebSocket(ctx, rawConn, s.cfg.CommonConf.BufferSize)
		if err != nil {
			return fmt.Errorf("websocket upgrade from %s failed: %w", rawConn.RemoteAddr(), err)
		}
	}

	counted := shared.NewCountedConn(conn, &s.uplinkBytes, &s.downlinkBytes)
	l := s.logger.With().
		Str("session_id", uuid.NewString()).
		Str("peer", counted.RemoteAddr().String()).
		Logger()

	if err := s.lifecycle.Advance(globalstate.Connected); err != nil {
		_ = counted.Close()
		return err
	}
	l.Info().Msg("Connection accepted.")
	fmt.Fprintf(s.out, "Connection from %s\n", counted.RemoteAddr())

	stopRead := context.AfterFunc(ctx, func() { _ = counted.Close() })
	drainErr := s.drain(counted)
	stopRead()
	closeErr := counted.Close()

	l.Info().
		Uint64("bytes_received", s.downlinkBytes.Load()).
		Msg("Connection closed.")

	if drainErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return drainErr
	}
	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return fmt.Errorf("failed to close connection: %w", closeErr)
	}
	return nil
}

// drain reads chunk by chunk until EOF, printing each non-empty chunk on
// its own line. Chunks are never reassembled.
func (s *Server) drain(conn net.Conn) error {
	if err := s.lifecycle.Advance(globalstate.Draining); err != nil {
		return err
	}
	buf := make([]byte, s.cfg.CommonConf.BufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			text, decodeErr := s.decode(buf[:n])
			if decodeErr != nil {
				return decodeErr
			}
			fmt.Fprintf(s.out, "Received message: %s\n", text)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

func (s *Server) decode(chunk []byte) (string, error) {
	if utf8.Valid(chunk) {
		return string(chunk), nil
	}
	if s.cfg.ServerConf.LossyUTF8 {
		return strings.ToValidUTF8(string(chunk), string(utf8.RuneError)), nil
	}
	return "", ErrInvalidUTF8
}

func (s *Server) closeListener() {
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn().Err(err).Msg("Failed to close listener.")
	}
	if s.lifecycle.Get() != globalstate.Closed {
		_ = s.lifecycle.Advance(globalstate.Closed)
	}
	s.logger.Debug().Msg("Listener closed.")
}
