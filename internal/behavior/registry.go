package behavior

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	factory Factory
	loader  Loader
}

// Registry manages behavior unit factories
type Registry struct {
	modules map[string]*entry
	mu      sync.RWMutex
	loads   singleflight.Group
}

// NewRegistry creates a new behavior registry
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*entry),
	}
}

// Register adds a factory to the registry
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, name)
	}
	return r.add(name, &entry{factory: factory})
}

// RegisterLoader adds a lazily loaded module to the registry. The loader
// runs the first time the module is resolved; a failed load is retried on
// the next resolution.
func (r *Registry) RegisterLoader(name string, loader Loader) error {
	if loader == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, name)
	}
	return r.add(name, &entry{loader: loader})
}

func (r *Registry) add(name string, e *entry) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidModuleName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}

	r.modules[name] = e
	return nil
}

// MustRegister adds a factory to the registry and panics on error
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(fmt.Sprintf("failed to register module %s: %v", name, err))
	}
}

// Resolve returns the factory for the named module, loading it first if it
// was registered with a loader.
func (r *Registry) Resolve(ctx context.Context, name string) (Factory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	e, exists := r.modules[name]
	var factory Factory
	if exists {
		factory = e.factory
	}
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}

	if factory != nil {
		return factory, nil
	}

	// The shared load outlives any one caller's ctx.
	loadCtx := context.WithoutCancel(ctx)
	results := r.loads.DoChan(name, func() (interface{}, error) {
		f, err := e.loader(loadCtx)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, ErrNilFactory
		}

		r.mu.Lock()
		e.factory = f
		r.mu.Unlock()
		return f, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w %s: %w", ErrLoadFailed, name, ctx.Err())
	case res = <-results:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLoadFailed, name, res.Err)
	}

	return res.Val.(Factory), nil
}

// Has reports whether a module is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.modules[name]
	return exists
}

// List returns the names of all registered modules, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default registry instance
var defaultRegistry = NewRegistry()

// Default returns the package level registry
func Default() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// RegisterLoader adds a lazily loaded module to the default registry
func RegisterLoader(name string, loader Loader) error {
	return defaultRegistry.RegisterLoader(name, loader)
}

// MustRegister adds a factory to the default registry and panics on error
func MustRegister(name string, factory Factory) {
	defaultRegistry.MustRegister(name, factory)
}

// Resolve resolves a module using the default registry
func Resolve(ctx context.Context, name string) (Factory, error) {
	return defaultRegistry.Resolve(ctx, name)
}

// List returns the names of all modules in the default registry
func List() []string {
	return defaultRegistry.List()
}
