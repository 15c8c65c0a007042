package control

import (
	"context"

	"github.com/mk6i/ascii-sfu/wire"
)

// inCallLoop implements the InCall state: the session stops parsing
// new client requests but keeps reading the stream to detect closure,
// while concurrently draining the notification queue and writing
// membership events to the client. It splits into a reader goroutine
// that only watches for EOF/error and a writer loop that drains
// notifications, joined by a done channel.
func (s *Session) inCallLoop(ctx context.Context) error {
	readerDone := make(chan error, 1)
	go func() {
		for {
			if _, err := wire.Decode(s.conn); err != nil {
				readerDone <- err
				return
			}
			// The client sends no further requests once in a call;
			// any bytes read here are discarded, only closure matters.
		}
	}()

	for {
		select {
		case cmd, ok := <-s.notify:
			if !ok {
				return nil
			}
			if err := wire.Encode(s.conn, cmd); err != nil {
				return err
			}
		case err := <-readerDone:
			return swallowEOF(err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
