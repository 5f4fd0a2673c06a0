// Package activate implements the one-shot activation command: read a
// document, activate its behavior modules, and write the result.
package activate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/cli"
	"github.com/larsks/datamodule/internal/document"
	"github.com/larsks/datamodule/internal/events"
	"github.com/larsks/datamodule/internal/modules"
)

// Handler implements cli.CommandHandler for one-shot activation.
type Handler struct {
	stdin   io.Reader
	stdout  io.Writer
	connect func(events.Config) (*events.Reporter, func(), error)
}

// NewHandler creates a handler that uses stdin and stdout for the "-"
// input and output.
func NewHandler(stdin io.Reader, stdout io.Writer) *Handler {
	return &Handler{
		stdin:   stdin,
		stdout:  stdout,
		connect: events.Connect,
	}
}

// Start activates the configured input with the built-in modules.
func (h *Handler) Start(config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfigType, config)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry := behavior.NewRegistry()
	if err := modules.RegisterBuiltins(registry); err != nil {
		return err
	}

	if cfg.ListModules {
		return h.ListModules(registry)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []activator.Option
	reporter, disconnect, err := h.connect(cfg.MQTT)
	if err != nil {
		return err
	}
	defer disconnect()
	if reporter != nil {
		// Events published before the broker connects are dropped.
		waitCtx, cancel := context.WithTimeout(ctx, cfg.MQTT.Timeout())
		err := reporter.WaitReady(waitCtx)
		cancel()
		if err != nil {
			log.Printf("mqtt broker not ready, activation events will be dropped: %v", err)
		}
		opts = append(opts, activator.WithObserver(reporter.Observer()))
	}

	return h.Run(ctx, cfg, registry, opts...)
}

// ListModules writes the names known to registry, one per line.
func (h *Handler) ListModules(registry *behavior.Registry) error {
	for _, name := range registry.List() {
		if _, err := fmt.Fprintln(h.stdout, name); err != nil {
			return err
		}
	}
	return nil
}

// Run reads the input document, activates it and writes it to the output.
// The output is written even when some pairs fail; the failures are then
// returned wrapped in ErrActivationFailed.
func (h *Handler) Run(ctx context.Context, cfg *Config, resolver behavior.Resolver, opts ...activator.Option) error {
	doc, err := h.readDocument(cfg.Input)
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts = append([]activator.Option{activator.WithAttribute(cfg.Attribute)}, opts...)
	sweep := activator.New(resolver, opts...).Activate(ctx, doc)
	waitErr := sweep.WaitContext(ctx)

	if err := h.writeDocument(cfg.Output, doc); err != nil {
		return err
	}

	if waitErr != nil {
		return fmt.Errorf("%w: %w", ErrActivationFailed, waitErr)
	}

	log.Printf("activated %d pairs", sweep.Len())
	return nil
}

func (h *Handler) readDocument(name string) (*document.Document, error) {
	if name == StdStream {
		return document.Parse(h.stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return document.Parse(f)
}

func (h *Handler) writeDocument(name string, doc *document.Document) error {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return err
	}

	if name == StdStream {
		_, err := h.stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
