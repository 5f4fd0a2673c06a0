package server

import (
	"fmt"
	"time"

	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/config"
	"github.com/larsks/datamodule/internal/events"
	"github.com/spf13/pflag"
)

// Config holds the configuration for the development server.
type Config struct {
	ConfigFile        string        `mapstructure:"config"`
	ListenAddress     string        `mapstructure:"listen-address"`
	ListenPort        int           `mapstructure:"listen-port"`
	Root              string        `mapstructure:"root"`
	Index             string        `mapstructure:"index"`
	Attribute         string        `mapstructure:"attribute"`
	LiveReload        bool          `mapstructure:"live-reload"`
	ActivationTimeout time.Duration `mapstructure:"activation-timeout"`
	CORSOrigins       []string      `mapstructure:"cors-origins"`
	MQTT              events.Config `mapstructure:"mqtt"`
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress:     "",
		ListenPort:        8080,
		Root:              "public",
		Index:             "index.html",
		Attribute:         activator.DefaultAttribute,
		LiveReload:        true,
		ActivationTimeout: 10 * time.Second,
		CORSOrigins:       []string{"*"},
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for the server")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for the server")
	fs.StringVar(&c.Root, "root", c.Root, "Directory containing the documents to serve")
	fs.StringVar(&c.Index, "index", c.Index, "Document served for directory requests")
	fs.StringVar(&c.Attribute, "attribute", c.Attribute, "Attribute declaring behavior modules")
	fs.BoolVar(&c.LiveReload, "live-reload", c.LiveReload, "Reload browsers when documents change")
	fs.DurationVar(&c.ActivationTimeout, "activation-timeout", c.ActivationTimeout, "Maximum time to wait for a document's modules to activate")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Allowed CORS origins")
	c.MQTT.AddFlags(fs)
}

func (c *Config) defaults() map[string]any {
	return map[string]any{
		"listen-address":       c.ListenAddress,
		"listen-port":          c.ListenPort,
		"root":                 c.Root,
		"index":                c.Index,
		"attribute":            c.Attribute,
		"live-reload":          c.LiveReload,
		"activation-timeout":   c.ActivationTimeout,
		"cors-origins":         c.CORSOrigins,
		"mqtt.server-url":      c.MQTT.ServerURL,
		"mqtt.client-id":       c.MQTT.ClientID,
		"mqtt.connect-timeout": c.MQTT.ConnectTimeout,
	}
}

// LoadConfig loads the configuration using the process-wide flag set.
func (c *Config) LoadConfig() error {
	return c.LoadConfigWithFlagSet(pflag.CommandLine)
}

// LoadConfigWithFlagSet loads the configuration from the config file (or
// the default XDG config file) and the explicitly set flags in fs.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewConfigLoader()
	loader.SetFlagSet(fs)
	loader.SetConfigFile(config.ResolveConfigFile(c.ConfigFile))
	loader.SetDefaults(c.defaults())

	return loader.LoadConfig(c)
}

// Validate checks that the configuration can be used to start a server.
func (c *Config) Validate() error {
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: listen port must be between 1 and 65535, got %d", config.ErrInvalidConfig, c.ListenPort)
	}
	if c.Root == "" {
		return fmt.Errorf("%w: root is required", config.ErrInvalidConfig)
	}
	if c.Index == "" {
		return fmt.Errorf("%w: index is required", config.ErrInvalidConfig)
	}
	if c.ActivationTimeout < 0 {
		return fmt.Errorf("%w: activation timeout must not be negative", config.ErrInvalidConfig)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return nil
}

// GetListenAddress implements httpserver.Config interface
func (c *Config) GetListenAddress() string {
	return c.ListenAddress
}

// GetListenPort implements httpserver.Config interface
func (c *Config) GetListenPort() int {
	return c.ListenPort
}
