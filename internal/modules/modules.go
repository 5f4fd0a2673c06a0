// Package modules contains the built-in behavior units.
package modules

import (
	"time"

	"github.com/larsks/datamodule/internal/behavior"
)

// Module names
const (
	ExternalLinks = "external-links"
	LazyImages    = "lazy-images"
	TOC           = "toc"
	Stamp         = "stamp"
)

// RegisterBuiltins installs all of the built-in behavior units into the
// provided registry.
func RegisterBuiltins(reg *behavior.Registry) error {
	if reg == nil {
		return behavior.ErrNilRegistry
	}

	builtins := map[string]behavior.Factory{
		ExternalLinks: behavior.FactoryFunc(NewExternalLinks),
		LazyImages:    behavior.FactoryFunc(NewLazyImages),
		TOC:           behavior.FactoryFunc(NewTOC),
		Stamp:         NewStampFactory(time.Now),
	}

	for name, factory := range builtins {
		if err := reg.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
