// Package server runs the render backend's TCP accept loop.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConnHandler serves one connection. render.Context implements it.
type ConnHandler interface {
	Handle(ctx context.Context, conn io.ReadWriter) error
}

// Server accepts connections one at a time and hands each to Handler. The
// next connection is not accepted until the previous one is closed.
type Server struct {
	Handler ConnHandler
	Log     zerolog.Logger
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.Log.Info().Str("addr", ln.Addr().String()).Msg("render backend listening")
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop until ctx is cancelled or the listener fails.
// Cancelling ctx closes ln and makes Serve return nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.Log.Warn().Err(err).Msg("accept")
				continue
			}
			return err
		}
		s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.Log.With().
		Str("conn", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	start := time.Now()
	log.Debug().Msg("accepted")

	if err := s.Handler.Handle(log.WithContext(ctx), conn); err != nil {
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("connection failed")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("connection done")
}
