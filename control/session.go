// Package control implements the per-connection control session state
// machine: Connecting -> Greeting -> Idle -> InCall -> Closed.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/mk6i/ascii-sfu/logging"
	"github.com/mk6i/ascii-sfu/registry"
	"github.com/mk6i/ascii-sfu/wire"
)

// Session drives one client's control connection from hello through
// teardown.
type Session struct {
	conn     net.Conn
	reg      *registry.Registry
	logger   *slog.Logger
	username string
	notify   <-chan wire.Command
}

// NewSession wraps an accepted control connection.
func NewSession(conn net.Conn, reg *registry.Registry, logger *slog.Logger) *Session {
	return &Session{conn: conn, reg: reg, logger: logger}
}

// Run executes the full session lifecycle and always closes the
// connection and (if registration succeeded) tears down the user from
// the registry before returning. A peer closing the connection
// cleanly at any stage is not an error.
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()

	ctx = logging.WithRemoteAddr(ctx, s.conn.RemoteAddr().String())

	accepted, err := s.greet(ctx)
	if err != nil {
		return swallowEOF(err)
	}
	if !accepted {
		return nil
	}
	defer s.reg.DeregisterUser(s.username)

	ctx = logging.WithUsername(ctx, s.username)

	inCall, err := s.idle(ctx)
	if err != nil {
		return swallowEOF(err)
	}
	if !inCall {
		return nil
	}

	return s.inCallLoop(ctx)
}

func swallowEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// greet handles Connecting -> Greeting. It reports accepted=true once
// the user has been registered and HelloFromServer sent; accepted=false
// after a rejection response has been sent (the session is done, not
// an error).
func (s *Session) greet(ctx context.Context) (accepted bool, err error) {
	cmd, err := wire.Decode(s.conn)
	if err != nil {
		return false, err
	}
	if cmd.Opcode != wire.HelloFromClient {
		return false, fmt.Errorf("%w: expected HelloFromClient, got %s", wire.ErrMalformedFrame, cmd.Opcode)
	}

	notifyCh, regErr := s.reg.RegisterUser(cmd.Str)
	if regErr != nil {
		reason := rejectReason(cmd.Str, regErr)
		if err := wire.Encode(s.conn, wire.WithString(wire.InvalidUsername, reason)); err != nil {
			return false, err
		}
		return false, nil
	}

	s.username = cmd.Str
	s.notify = notifyCh
	s.logger.InfoContext(ctx, "user connected")

	return true, wire.Encode(s.conn, wire.Simple(wire.HelloFromServer))
}

func rejectReason(name string, err error) string {
	if errors.Is(err, registry.ErrNameTaken) {
		return fmt.Sprintf("Username '%s' is already taken.", name)
	}
	return fmt.Sprintf("Username '%s' is invalid.", name)
}
