// Package behavior defines behavior units, the named element-scoped pieces
// of logic that the activator attaches to tagged elements, and the registry
// that resolves them by name.
package behavior

import (
	"context"

	"github.com/larsks/datamodule/internal/document"
)

// Instance is whatever a behavior unit produces when constructed. The
// activator does not inspect or retain it.
type Instance any

// Factory constructs behavior unit instances.
type Factory interface {
	// Construct creates one instance bound to el.
	Construct(ctx context.Context, el *document.Element) (Instance, error)
}

// FactoryFunc adapts an ordinary function to the Factory interface.
type FactoryFunc func(ctx context.Context, el *document.Element) (Instance, error)

// Construct calls f(ctx, el).
func (f FactoryFunc) Construct(ctx context.Context, el *document.Element) (Instance, error) {
	return f(ctx, el)
}

// Loader produces a Factory on first use. It stands in for loading the
// code of a behavior unit lazily.
type Loader func(ctx context.Context) (Factory, error)

// Resolver maps a module name to a Factory.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Factory, error)
}
