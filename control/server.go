package control

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/mk6i/ascii-sfu/registry"
)

// Server accepts control connections and runs one Session per
// connection until Shutdown is called.
type Server struct {
	addr   string
	reg    *registry.Registry
	logger *slog.Logger

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
	connWg sync.WaitGroup

	ln net.Listener

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewServer builds a control server bound to addr once ListenAndServe
// is called.
func NewServer(addr string, reg *registry.Registry, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:           addr,
		reg:            reg,
		logger:         logger,
		conns:          make(map[net.Conn]struct{}),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}
}

// ListenAndServe blocks accepting connections until Shutdown is called
// or the listener fails to bind.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("control session service listening", "addr", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept error", "err", err.Error())
			continue
		}

		s.connMu.Lock()
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.connWg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
		s.connWg.Done()
	}()

	sess := NewSession(conn, s.reg, s.logger)
	if err := sess.Run(s.shutdownCtx); err != nil {
		s.logger.Info("session ended with error", "err", err.Error())
	}
}

// Shutdown closes the listener and every open connection, then waits
// for in-flight sessions to unwind.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownCancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}

	s.connMu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.connWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("shutdown timed out waiting for sessions to close")
	}
	return nil
}
