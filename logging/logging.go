// Package logging sets up the structured slog logger shared by the
// control, relay, and client binaries.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/mk6i/ascii-sfu/config"
)

// LevelTrace sits below slog.LevelDebug and is used for per-datagram
// relay tracing, which is far too chatty for debug level.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// New builds a text-formatted logger to stdout at the granularity
// named by cfg.LogLevel, with username/remote-address context values
// promoted onto every record.
func New(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "trace":
		level = LevelTrace
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		fallthrough
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				label, exists := levelNames[lvl]
				if !exists {
					label = lvl.String()
				}
				a.Value = slog.StringValue(label)
			}
			return a
		},
	}
	return slog.New(handler{slog.NewTextHandler(os.Stdout, opts)})
}

type ctxKey string

const (
	ctxKeyUsername ctxKey = "username"
	ctxKeyRemote   ctxKey = "remote"
)

// WithUsername returns a context that carries the username for
// promotion onto subsequent log records.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKeyUsername, username)
}

// WithRemoteAddr returns a context that carries the remote address for
// promotion onto subsequent log records.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ctxKeyRemote, addr)
}

type handler struct {
	slog.Handler
}

func (h handler) Handle(ctx context.Context, r slog.Record) error {
	if u := ctx.Value(ctxKeyUsername); u != nil {
		r.AddAttrs(slog.String("username", u.(string)))
	}
	if a := ctx.Value(ctxKeyRemote); a != nil {
		r.AddAttrs(slog.String("remote", a.(string)))
	}
	return h.Handler.Handle(ctx, r)
}

func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handler{h.Handler.WithAttrs(attrs)}
}

func (h handler) WithGroup(name string) slog.Handler {
	return handler{h.Handler.WithGroup(name)}
}
