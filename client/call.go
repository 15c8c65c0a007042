package client

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mk6i/ascii-sfu/frame"
	"github.com/mk6i/ascii-sfu/wire"
)

// Call drives the three cooperative activities of an active call:
// send, receive, and compose/render, plus a fourth task that folds
// control-channel membership notifications into the peer set.
type Call struct {
	mediaConn *net.UDPConn
	sid       byte
	src       FrameSource
	renderer  Renderer
	notify    <-chan wire.Command
	logger    *slog.Logger
	fps       int

	localMu sync.Mutex
	local   []byte // unpacked nibble samples of the most recently sent frame

	peersMu sync.Mutex
	peers   map[byte][]byte // rsid -> latest unpacked nibble samples (nil = no frame yet)
}

// NewCall builds a Call. mediaConn must already be "connected" (via
// net.DialUDP) to the relay's address so that plain Write/Read can be
// used instead of WriteTo/ReadFrom. notify carries the control
// session's OtherUserJoinedRoom/OtherUserLeftRoom events for the
// duration of the call; it is closed when the control connection
// ends.
func NewCall(mediaConn *net.UDPConn, sid byte, src FrameSource, renderer Renderer, notify <-chan wire.Command, fps int, logger *slog.Logger) *Call {
	return &Call{
		mediaConn: mediaConn,
		sid:       sid,
		src:       src,
		renderer:  renderer,
		notify:    notify,
		logger:    logger,
		fps:       fps,
		peers:     make(map[byte][]byte),
	}
}

// Run blocks until the call ends: the control connection closes (its
// notify channel closes), the media socket errors, or ctx is
// cancelled.
func (c *Call) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.sendLoop(ctx) })
	g.Go(func() error { return c.receiveLoop(ctx) })
	g.Go(func() error { return c.composeLoop(ctx) })
	g.Go(func() error {
		// membershipLoop returns nil once notify closes; cancel so the
		// other loops stop with it.
		defer cancel()
		return c.membershipLoop(ctx)
	})
	return g.Wait()
}

func (c *Call) sendLoop(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Limit(c.fps), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		g, err := c.src.NextFrame()
		if err != nil {
			c.logger.WarnContext(ctx, "capture failed, skipping frame", "err", err)
			continue
		}

		packed := frame.Pack(g)
		datagram := make([]byte, 0, 1+len(packed))
		datagram = append(datagram, c.sid)
		datagram = append(datagram, packed...)
		if _, err := c.mediaConn.Write(datagram); err != nil {
			return err
		}

		samples, err := frame.Unpack(packed, frame.Width, frame.Height)
		if err == nil {
			c.localMu.Lock()
			c.local = samples
			c.localMu.Unlock()
		}
	}
}

// receiveLoop reads datagrams on its own goroutine, since net.UDPConn
// has no ctx-aware Read, and joins it with ctx.Done() in a select so
// cancellation doesn't wait for a peer datagram that may never arrive;
// the same split reader-goroutine/select shape as control.inCallLoop.
func (c *Call) receiveLoop(ctx context.Context) error {
	type result struct {
		n   int
		buf []byte
		err error
	}
	recvCh := make(chan result, 1)

	go func() {
		for {
			buf := make([]byte, 1500)
			n, err := c.mediaConn.Read(buf)
			recvCh <- result{n: n, buf: buf, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case res := <-recvCh:
			if res.err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return res.err
			}
			c.handleDatagram(res.buf[:res.n])
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Call) handleDatagram(datagram []byte) {
	if len(datagram) < 2 {
		return
	}
	rsid := datagram[0]
	samples, err := frame.Unpack(datagram[1:], frame.Width, frame.Height)
	if err != nil {
		return
	}

	c.peersMu.Lock()
	if _, known := c.peers[rsid]; known {
		c.peers[rsid] = samples
	}
	c.peersMu.Unlock()
}

func (c *Call) membershipLoop(ctx context.Context) error {
	for {
		select {
		case cmd, ok := <-c.notify:
			if !ok {
				return nil
			}
			switch cmd.Opcode {
			case wire.OtherUserJoinedRoom:
				c.peersMu.Lock()
				c.peers[cmd.SIDByte] = nil
				c.peersMu.Unlock()
			case wire.OtherUserLeftRoom:
				c.peersMu.Lock()
				delete(c.peers, cmd.SIDByte)
				c.peersMu.Unlock()
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Call) composeLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.renderOnce()
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Call) renderOnce() {
	c.localMu.Lock()
	self := c.local
	c.localMu.Unlock()

	c.peersMu.Lock()
	peersSnapshot := make(map[byte][]byte, len(c.peers))
	for rsid, samples := range c.peers {
		peersSnapshot[rsid] = samples
	}
	c.peersMu.Unlock()

	panels := panelsFromState(self, peersSnapshot)
	if len(panels) == 0 {
		return
	}

	cols, rows := TerminalSize()
	buf := composite(panels, cols, rows)
	if err := c.renderer.Update(buf, cols, rows); err != nil {
		c.logger.Error("render failed", "err", err)
	}
}
