package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/larsks/datamodule/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, 8080, cfg.ListenPort)
	assert.Equal(t, "public", cfg.Root)
	assert.Equal(t, "index.html", cfg.Index)
	assert.Equal(t, "data-module", cfg.Attribute)
	assert.True(t, cfg.LiveReload)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
root = "site"
listen-port = 9000
live-reload = false
activation-timeout = "2s"

[mqtt]
server-url = "mqtt://broker:1883"
`), 0o600))

	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--listen-port", "9100", "--attribute", "data-behavior"}))

	require.NoError(t, cfg.LoadConfigWithFlagSet(fs))

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "site", cfg.Root)
	assert.Equal(t, 9100, cfg.ListenPort)
	assert.Equal(t, "data-behavior", cfg.Attribute)
	assert.False(t, cfg.LiveReload)
	assert.Equal(t, 2*time.Second, cfg.ActivationTimeout)
	assert.Equal(t, "index.html", cfg.Index)
	assert.Equal(t, "mqtt://broker:1883", cfg.MQTT.ServerURL)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too low", func(c *Config) { c.ListenPort = 0 }},
		{"port too high", func(c *Config) { c.ListenPort = 70000 }},
		{"no root", func(c *Config) { c.Root = "" }},
		{"no index", func(c *Config) { c.Index = "" }},
		{"negative timeout", func(c *Config) { c.ActivationTimeout = -time.Second }},
		{"bad mqtt url", func(c *Config) { c.MQTT.ServerURL = "http://broker" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestServeHandler_WrongConfigType(t *testing.T) {
	err := NewServeHandler().Start(nil)
	assert.ErrorIs(t, err, ErrInvalidConfigType)
}
