package events

import (
	"fmt"
	"time"

	"github.com/larsks/datamodule/internal/mqtt"
	"github.com/spf13/pflag"
)

// Config holds the settings for activation event publishing. Publishing
// is disabled when ServerURL is empty.
type Config struct {
	ServerURL      string        `mapstructure:"server-url"`
	ClientID       string        `mapstructure:"client-id"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

// DefaultConnectTimeout bounds how long a one-shot run waits for the broker.
const DefaultConnectTimeout = 5 * time.Second

// DefaultClientID is used when no client id is configured.
const DefaultClientID = "datamodule"

// AddFlags adds the mqtt.* flags to fs.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ServerURL, "mqtt.server-url", c.ServerURL, "MQTT broker for activation events (mqtt://host:port); empty disables events")
	fs.StringVar(&c.ClientID, "mqtt.client-id", c.ClientID, "MQTT client id")
	fs.DurationVar(&c.ConnectTimeout, "mqtt.connect-timeout", c.ConnectTimeout, "How long to wait for the broker before activating (0 uses 5s)")
}

// Timeout returns ConnectTimeout, or DefaultConnectTimeout when unset.
func (c Config) Timeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return c.ConnectTimeout
}

// Enabled reports whether events should be published.
func (c Config) Enabled() bool {
	return c.ServerURL != ""
}

// Validate checks the broker URL when events are enabled.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return mqtt.ValidateServerURL(c.ServerURL)
}

// Connect creates a Reporter backed by an MQTT client. It returns a nil
// Reporter when events are disabled. The returned function disconnects
// the client.
func Connect(c Config) (*Reporter, func(), error) {
	if !c.Enabled() {
		return nil, func() {}, nil
	}

	clientID := c.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	client, err := mqtt.NewClient(mqtt.Config{
		ServerURL: c.ServerURL,
		ClientID:  clientID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mqtt client: %w", err)
	}

	return NewReporter(client), func() { client.Disconnect(250) }, nil
}
