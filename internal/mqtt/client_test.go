package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"mqtt://localhost:1883", false},
		{"mqtt://broker", false},
		{"tcp://localhost:1883", true},
		{"localhost:1883", true},
		{"mqtt://", true},
		{"::not a url", true},
	}

	for _, tt := range tests {
		err := ValidateServerURL(tt.url)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidServerURL, tt.url)
		} else {
			assert.NoError(t, err, tt.url)
		}
	}
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(Config{ServerURL: "http://example.com"})
	assert.ErrorIs(t, err, ErrInvalidServerURL)
}

func TestPublish_NotConnected(t *testing.T) {
	c := &Client{}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Publish("topic", 0, false, []byte("x")), ErrNotConnected)
	c.Disconnect(0)
}

func TestWaitConnected(t *testing.T) {
	c := &Client{connected: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.WaitConnected(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.once.Do(func() { close(c.connected) })
	assert.NoError(t, c.WaitConnected(context.Background()))
}
