package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mk6i/ascii-sfu/config"
	"github.com/mk6i/ascii-sfu/control"
	"github.com/mk6i/ascii-sfu/logging"
	"github.com/mk6i/ascii-sfu/registry"
	"github.com/mk6i/ascii-sfu/relay"
)

// Container groups together the dependencies shared by every service.
type Container struct {
	cfg    config.Config
	logger *slog.Logger
	reg    *registry.Registry
}

// MakeCommonDeps loads configuration, builds the logger, and
// constructs the room/session registry shared by the control and
// relay services.
func MakeCommonDeps() (Container, error) {
	c := Container{}

	if err := envconfig.Process("", &c.cfg); err != nil {
		return c, fmt.Errorf("unable to process app config: %w", err)
	}

	c.logger = logging.New(c.cfg)
	c.reg = registry.New(c.cfg.NotifyQueue, c.cfg.MaxSIDRetries)

	return c, nil
}

// ControlServer creates the TCP control session service.
func ControlServer(deps Container) *control.Server {
	logger := deps.logger.With("svc", "control")
	addr := fmt.Sprintf("%s:%s", deps.cfg.ControlHost, deps.cfg.ControlPort)
	return control.NewServer(addr, deps.reg, logger)
}

// RelayServer creates the UDP media relay service.
func RelayServer(deps Container) (*relay.Relay, error) {
	logger := deps.logger.With("svc", "relay")
	addr := fmt.Sprintf("%s:%s", deps.cfg.RelayHost, deps.cfg.RelayPort)

	ttl, err := time.ParseDuration(deps.cfg.EndpointTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid ENDPOINT_TTL %q: %w", deps.cfg.EndpointTTL, err)
	}

	return relay.Listen(addr, deps.reg, ttl, logger)
}
