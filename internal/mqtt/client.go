package mqtt

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client is a thin wrapper around a paho MQTT client that connects in the
// background and keeps retrying.
type Client struct {
	client    mqtt.Client
	connected chan struct{}
	once      sync.Once
}

// Config holds MQTT client configuration
type Config struct {
	ServerURL         string
	ClientID          string
	MaxRetries        int           // Maximum number of connection retries (0 = infinite)
	InitialRetryDelay time.Duration // Initial delay between retries
	MaxRetryDelay     time.Duration // Maximum delay between retries
}

// ValidateServerURL checks that serverURL is an mqtt:// URL.
func ValidateServerURL(serverURL string) error {
	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}

	if parsedURL.Scheme != "mqtt" || parsedURL.Host == "" {
		return fmt.Errorf("%w: %s must look like mqtt://host:port", ErrInvalidServerURL, serverURL)
	}

	return nil
}

// NewClient creates a new MQTT client with the given configuration.
// The client connects asynchronously and retries if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	if err := ValidateServerURL(config.ServerURL); err != nil {
		return nil, err
	}

	initialDelay := config.InitialRetryDelay
	if initialDelay == 0 {
		initialDelay = time.Second
	}
	maxDelay := config.MaxRetryDelay
	if maxDelay == 0 {
		maxDelay = 30 * time.Second
	}

	c := &Client{connected: make(chan struct{})}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.ServerURL)
	opts.SetClientID(config.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxDelay)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("connected to mqtt broker at %s", config.ServerURL)
		c.once.Do(func() { close(c.connected) })
	})

	client := mqtt.NewClient(opts)
	c.client = client

	go func() {
		delay := initialDelay
		attempt := 0
		for {
			token := client.Connect()
			if token.Wait() && token.Error() == nil {
				return
			}

			attempt++
			if config.MaxRetries > 0 && attempt >= config.MaxRetries {
				log.Printf("failed to connect to mqtt broker after %d attempts, giving up: %v", attempt, token.Error())
				return
			}

			log.Printf("failed to connect to mqtt broker (attempt %d): %v, retrying in %v", attempt, token.Error(), delay)
			time.Sleep(delay)

			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}()

	return c, nil
}

// WaitConnected blocks until the first connection to the broker succeeds
// or ctx ends.
func (c *Client) WaitConnected(ctx context.Context) error {
	select {
	case <-c.connected:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotConnected, ctx.Err())
	}
}

// Publish publishes a message to the specified topic
func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if token := c.client.Publish(topic, qos, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, token.Error())
	}

	return nil
}

// IsConnected returns true if the client is connected to the MQTT broker
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Disconnect disconnects from the MQTT broker
func (c *Client) Disconnect(quiesce uint) {
	if c.IsConnected() {
		c.client.Disconnect(quiesce)
		log.Printf("disconnected from mqtt broker")
	}
}
