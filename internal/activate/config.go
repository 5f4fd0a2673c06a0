package activate

import (
	"fmt"
	"time"

	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/config"
	"github.com/larsks/datamodule/internal/events"
	"github.com/spf13/pflag"
)

// StdStream names standard input or standard output in place of a file.
const StdStream = "-"

// Config holds the configuration for a one-shot activation.
type Config struct {
	ConfigFile  string        `mapstructure:"config"`
	Input       string        `mapstructure:"input"`
	Output      string        `mapstructure:"output"`
	Attribute   string        `mapstructure:"attribute"`
	ListModules bool          `mapstructure:"list-modules"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MQTT        events.Config `mapstructure:"mqtt"`
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		Input:     StdStream,
		Output:    StdStream,
		Attribute: activator.DefaultAttribute,
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Config file to use")
	fs.StringVarP(&c.Input, "input", "i", c.Input, "Document to activate (- for stdin)")
	fs.StringVarP(&c.Output, "output", "o", c.Output, "Where to write the activated document (- for stdout)")
	fs.StringVar(&c.Attribute, "attribute", c.Attribute, "Attribute declaring behavior modules")
	fs.BoolVar(&c.ListModules, "list-modules", false, "List available modules and exit")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Maximum time to wait for activation (0 waits forever)")
	c.MQTT.AddFlags(fs)
}

func (c *Config) defaults() map[string]any {
	return map[string]any{
		"input":                c.Input,
		"output":               c.Output,
		"attribute":            c.Attribute,
		"timeout":              c.Timeout,
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

// Validate checks that the configuration can be used for an activation.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input is required", config.ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", config.ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", config.ErrInvalidConfig)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return nil
}
