package activator

import (
	"errors"
	"fmt"
)

// ErrPanic marks a resolver or behavior unit that panicked.
var ErrPanic = errors.New("behavior unit panicked")

// Stage identifies where a pair activation failed.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageConstruct Stage = "construct"
)

// PairError is the failure of one (element, module) pair.
type PairError struct {
	Pair  Pair
	Stage Stage
	Err   error
}

func (e *PairError) Error() string {
	tag := ""
	if e.Pair.Element != nil {
		tag = e.Pair.Element.Tag()
	}
	return fmt.Sprintf("%s %s on <%s> (pair %d): %v", e.Stage, e.Pair.Module, tag, e.Pair.Index, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}
