package activator

import (
	"errors"
	"fmt"
)

// ErrorCollector accumulates errors and provides a unified way to handle multiple errors
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new ErrorCollector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// AddError adds an error without context
func (ec *ErrorCollector) AddError(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

// HasErrors returns true if any errors have been collected
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// Count returns the number of errors collected
func (ec *ErrorCollector) Count() int {
	return len(ec.errors)
}

// Result returns a combined error if any errors were collected, nil otherwise.
// The collected errors stay reachable through errors.Is and errors.As.
func (ec *ErrorCollector) Result(context string) error {
	if len(ec.errors) == 0 {
		return nil
	}

	var err error
	if len(ec.errors) == 1 {
		err = ec.errors[0]
	} else {
		err = errors.Join(ec.errors...)
	}

	if context != "" {
		return fmt.Errorf("%s: %w", context, err)
	}
	return err
}
