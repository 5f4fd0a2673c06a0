package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/cli"
	"github.com/larsks/datamodule/internal/events"
	"github.com/larsks/datamodule/internal/modules"
)

// ServeHandler implements cli.CommandHandler for the development server
type ServeHandler struct{}

// NewServeHandler creates a new serve command handler
func NewServeHandler() *ServeHandler {
	return &ServeHandler{}
}

// Start builds the registry of built-in modules and runs the server until
// the process is interrupted.
func (h *ServeHandler) Start(config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfigType, config)
	}

	registry := behavior.NewRegistry()
	if err := modules.RegisterBuiltins(registry); err != nil {
		return err
	}

	var opts []activator.Option
	reporter, disconnect, err := events.Connect(cfg.MQTT)
	if err != nil {
		return err
	}
	defer disconnect()
	if reporter != nil {
		opts = append(opts, activator.WithObserver(reporter.Observer()))
	}

	srv, err := NewServer(cfg, registry, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
