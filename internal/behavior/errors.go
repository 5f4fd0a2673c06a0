package behavior

import "errors"

// Registration errors
var (
	ErrInvalidModuleName = errors.New("invalid module name")
	ErrDuplicateModule   = errors.New("module already registered")
	ErrNilFactory        = errors.New("module factory is nil")
	ErrNilRegistry       = errors.New("registry is nil")
)

// Resolution errors
var (
	ErrUnknownModule = errors.New("unknown module")
	ErrLoadFailed    = errors.New("failed to load module")
)
