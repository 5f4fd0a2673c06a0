package activate

import "errors"

var (
	// ErrInvalidConfigType is returned when the handler receives a foreign config.
	ErrInvalidConfigType = errors.New("invalid config type")

	// ErrActivationFailed is returned when one or more pairs failed.
	ErrActivationFailed = errors.New("activation failed")
)
