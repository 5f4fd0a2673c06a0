// Package activator implements the activation sweep: it finds every element
// that declares behavior modules in its module attribute and constructs one
// behavior unit instance per (element, module) pair.
//
// Each pair is resolved and constructed in its own goroutine. Activate does
// not wait for any of them; the returned Sweep can be ignored (fire and
// forget, with failures reported through the failure handler) or waited on
// to collect the failures of individual pairs.
package activator

import (
	"context"
	"fmt"
	"log"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
	"github.com/sourcegraph/conc/panics"
)

// DefaultAttribute is the attribute elements use to declare modules.
const DefaultAttribute = "data-module"

// Observer is called once for every finished task, successful or not.
type Observer func(t *Task)

// Activator runs activation sweeps against documents.
type Activator struct {
	resolver  behavior.Resolver
	attribute string
	onFailure func(err *PairError)
	observers []Observer
	logger    *log.Logger
}

// Option configures an Activator.
type Option func(*Activator)

// WithAttribute sets the attribute scanned for module declarations.
func WithAttribute(attr string) Option {
	return func(a *Activator) {
		if attr != "" {
			a.attribute = attr
		}
	}
}

// WithFailureHandler replaces the handler invoked for every failed pair.
// A nil handler silences failures that nobody waits for.
func WithFailureHandler(fn func(err *PairError)) Option {
	return func(a *Activator) {
		a.onFailure = fn
	}
}

// WithObserver adds an observer that sees every finished task.
func WithObserver(obs Observer) Option {
	return func(a *Activator) {
		if obs != nil {
			a.observers = append(a.observers, obs)
		}
	}
}

// WithLogger sets the logger used by the default failure handler.
func WithLogger(logger *log.Logger) Option {
	return func(a *Activator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Activator that resolves modules through resolver. A nil
// resolver means the default behavior registry.
func New(resolver behavior.Resolver, opts ...Option) *Activator {
	if resolver == nil {
		resolver = behavior.Default()
	}

	a := &Activator{
		resolver:  resolver,
		attribute: DefaultAttribute,
		logger:    log.Default(),
	}
	a.onFailure = a.logFailure

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attribute returns the attribute this activator scans.
func (a *Activator) Attribute() string {
	return a.attribute
}

func (a *Activator) logFailure(err *PairError) {
	a.logger.Printf("activation failed: %v", err)
}

// Activate starts one task per (element, module) pair of doc and returns
// without waiting for any of them.
func (a *Activator) Activate(ctx context.Context, doc *document.Document) *Sweep {
	pairs := Pairs(doc, a.attribute)
	sweep := newSweep(len(pairs))

	for _, p := range pairs {
		t := newTask(p)
		sweep.tasks = append(sweep.tasks, t)
		sweep.wg.Go(func() {
			a.run(ctx, t)
		})
	}

	go func() {
		sweep.wg.Wait()
		close(sweep.done)
	}()

	return sweep
}

// Run activates doc and waits for every pair to finish.
func (a *Activator) Run(ctx context.Context, doc *document.Document) error {
	return a.Activate(ctx, doc).Wait()
}

func (a *Activator) run(ctx context.Context, t *Task) {
	instance, err := a.construct(ctx, t.Pair)

	t.instance = instance
	t.err = err
	close(t.done)

	if perr, ok := err.(*PairError); ok && a.onFailure != nil {
		a.onFailure(perr)
	}
	for _, obs := range a.observers {
		obs(t)
	}
}

func (a *Activator) construct(ctx context.Context, p Pair) (behavior.Instance, error) {
	var factory behavior.Factory
	if err := guard(p, StageResolve, func() (err error) {
		factory, err = a.resolver.Resolve(ctx, p.Module)
		return err
	}); err != nil {
		return nil, err
	}

	var instance behavior.Instance
	if err := guard(p, StageConstruct, func() (err error) {
		instance, err = factory.Construct(ctx, p.Element)
		return err
	}); err != nil {
		return nil, err
	}
	return instance, nil
}

// guard runs fn and reports an error or a panic as a PairError for stage.
func guard(p Pair, stage Stage, fn func() error) error {
	var err error
	if recovered := panics.Try(func() { err = fn() }); recovered != nil {
		err = fmt.Errorf("%w: %v", ErrPanic, recovered.AsError())
	}
	if err != nil {
		return &PairError{Pair: p, Stage: stage, Err: err}
	}
	return nil
}
