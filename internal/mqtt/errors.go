package mqtt

import "errors"

// MQTT client errors
var (
	ErrInvalidServerURL = errors.New("invalid mqtt server url")
	ErrNotConnected     = errors.New("mqtt client is not connected")
	ErrPublishFailed    = errors.New("failed to publish mqtt message")
)
