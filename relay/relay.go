// Package relay implements the SFU datagram relay (C6): a stateless,
// per-packet UDP fan-out keyed by the sender's registry-assigned SID.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mk6i/ascii-sfu/logging"
	"github.com/mk6i/ascii-sfu/registry"
)

// maxDatagram bounds the read buffer; datagrams are capped at 1500
// bytes on the wire (sid + payload).
const maxDatagram = 1500

// Relay forwards media datagrams between room members.
type Relay struct {
	conn      *net.UDPConn
	reg       *registry.Registry
	endpoints *cache.Cache
	logger    *slog.Logger
}

// New wraps an already-bound UDP socket. endpointTTL bounds how long a
// learned client address is trusted before it's evicted for
// inactivity; the relay itself never expires routing state, only the
// endpoint-learning cache that sits in front of it.
func New(conn *net.UDPConn, reg *registry.Registry, endpointTTL time.Duration, logger *slog.Logger) *Relay {
	return &Relay{
		conn:      conn,
		reg:       reg,
		endpoints: cache.New(endpointTTL, endpointTTL/2),
		logger:    logger,
	}
}

// Listen binds addr and wraps it in a Relay, for callers (the server
// entrypoint) that want Relay to own the socket's lifecycle.
func Listen(addr string, reg *registry.Registry, endpointTTL time.Duration, logger *slog.Logger) (*Relay, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	logger.Info("relay service listening", "addr", addr)
	return New(conn, reg, endpointTTL, logger), nil
}

// ListenAndServe is Serve under the name the server entrypoint's
// errgroup wiring expects of every long-running service.
func (r *Relay) ListenAndServe() error {
	return r.Serve(context.Background())
}

// Shutdown closes the UDP socket, unblocking Serve's read loop.
func (r *Relay) Shutdown(ctx context.Context) error {
	return r.conn.Close()
}

// Serve blocks, relaying datagrams until the socket is closed (e.g. by
// ctx cancellation unblocking the read via conn.Close elsewhere) or an
// unrecoverable read error occurs.
func (r *Relay) Serve(ctx context.Context) error {
	buf := make([]byte, maxDatagram)
	for {
		n, srcAddr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		r.handleDatagram(ctx, buf[:n], srcAddr)
	}
}

func (r *Relay) handleDatagram(ctx context.Context, datagram []byte, srcAddr *net.UDPAddr) {
	if len(datagram) < 2 {
		return
	}

	sid := datagram[0]
	payload := datagram[1:]

	username, ok := r.reg.UsernameForSID(sid)
	if !ok {
		return
	}
	r.endpoints.Set(username, srcAddr, cache.DefaultExpiration)

	rsid, others, ok := r.reg.RouteDatagram(username)
	if !ok {
		return
	}

	out := make([]byte, len(payload)+1)
	out[0] = rsid
	copy(out[1:], payload)

	for _, member := range others {
		v, found := r.endpoints.Get(member)
		if !found {
			continue
		}
		dstAddr := v.(*net.UDPAddr)
		if _, err := r.conn.WriteToUDP(out, dstAddr); err != nil {
			r.logger.LogAttrs(ctx, logging.LevelTrace, "relay write failed",
				slog.String("to", member), slog.String("err", err.Error()))
		}
	}
}
