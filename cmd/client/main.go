// Command client is the ASCII video-call client: it dials the control
// service, walks the hello/room/join handshake, then hands off to a
// Call for the duration of the conversation.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mk6i/ascii-sfu/client"
	"github.com/mk6i/ascii-sfu/config"
	"github.com/mk6i/ascii-sfu/logging"
)

var (
	controlAddr string
	relayAddr   string
	username    string
	room        string
	createRoom  bool
	source      string
	fps         int
	logLevel    string
)

func main() {
	root := &cobra.Command{
		Use:   "client",
		Short: "Join an ASCII video call",
		RunE:  run,
	}

	root.Flags().StringVar(&controlAddr, "server", "127.0.0.1:8069", "control service address")
	root.Flags().StringVar(&relayAddr, "relay", "127.0.0.1:8070", "relay service address")
	root.Flags().StringVar(&username, "username", "", "your username (required)")
	root.Flags().StringVar(&room, "room", "", "room to join (required)")
	root.Flags().BoolVar(&createRoom, "create", false, "create the room before joining if it doesn't exist")
	root.Flags().StringVar(&source, "source", "camera", "frame source: camera or testpattern")
	root.Flags().IntVar(&fps, "fps", 15, "capture/render rate")
	root.Flags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn, or error")
	_ = root.MarkFlagRequired("username")
	_ = root.MarkFlagRequired("room")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.New(config.Config{LogLevel: logLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(controlAddr)
	if err != nil {
		return fmt.Errorf("unable to reach control service: %w", err)
	}
	defer c.Close()

	if err := c.Hello(username); err != nil {
		return err
	}
	logger.Info("connected", "username", username)

	if createRoom {
		if err := c.CreateRoom(room); err != nil {
			logger.Warn("create room failed, joining anyway", "err", err.Error())
		}
	}

	sid, notify, err := c.JoinRoom(room)
	if err != nil {
		return fmt.Errorf("unable to join room %q: %w", room, err)
	}
	logger.Info("joined room", "room", room, "sid", fmt.Sprintf("0x%02x", sid))

	udpAddr, err := net.ResolveUDPAddr("udp", relayAddr)
	if err != nil {
		return fmt.Errorf("invalid relay address: %w", err)
	}
	mediaConn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return fmt.Errorf("unable to reach relay service: %w", err)
	}
	defer mediaConn.Close()

	src, err := frameSource(source)
	if err != nil {
		return err
	}
	renderer := client.NewTerminalRenderer(os.Stdout)

	call := client.NewCall(mediaConn, sid, src, renderer, notify, fps, logger)
	return call.Run(ctx)
}

func frameSource(kind string) (client.FrameSource, error) {
	switch kind {
	case "testpattern":
		return client.NewTestPatternSource(), nil
	case "camera":
		return client.NullCameraSource{}, nil
	default:
		return nil, fmt.Errorf("unknown frame source %q (want camera or testpattern)", kind)
	}
}
