package server

import "errors"

// Command errors
var (
	ErrInvalidConfigType = errors.New("invalid config type for server")
)
