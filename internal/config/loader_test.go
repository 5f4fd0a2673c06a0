package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMQTT struct {
	ServerURL string `mapstructure:"server-url"`
}

type testConfig struct {
	ConfigFile string        `mapstructure:"config"`
	Name       string        `mapstructure:"name"`
	Port       int           `mapstructure:"port"`
	Verbose    bool          `mapstructure:"verbose"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Origins    []string      `mapstructure:"origins"`
	MQTT       testMQTT      `mapstructure:"mqtt"`
}

func (c *testConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Config file")
	fs.StringVar(&c.Name, "name", c.Name, "Name")
	fs.IntVar(&c.Port, "port", c.Port, "Port")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Verbose")
	fs.StringSliceVar(&c.Origins, "origins", c.Origins, "Origins")
	fs.StringVar(&c.MQTT.ServerURL, "mqtt.server-url", c.MQTT.ServerURL, "MQTT server")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeFile(t, "config.toml", `
name = "from-file"
port = 9000
timeout = "3s"

[mqtt]
server-url = "mqtt://broker:1883"
`)

	cfg := &testConfig{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "9100", "--origins", "a.test,b.test"}))

	loader := NewConfigLoader()
	loader.SetFlagSet(fs)
	loader.SetConfigFile(path)
	loader.SetDefaults(map[string]any{
		"name":    "default",
		"port":    8080,
		"verbose": true,
	})

	require.NoError(t, loader.LoadConfig(cfg))

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a.test", "b.test"}, cfg.Origins)
	assert.Equal(t, "mqtt://broker:1883", cfg.MQTT.ServerURL)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	cfg := &testConfig{}
	loader := NewConfigLoader()
	loader.SetFlagSet(nil)
	loader.SetDefault("name", "default")
	loader.SetDefault("port", 8080)

	require.NoError(t, loader.LoadConfig(cfg))
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	loader := NewConfigLoader()
	loader.SetFlagSet(nil)
	loader.SetConfigFile(filepath.Join(t.TempDir(), "missing.toml"))

	err := loader.LoadConfig(&testConfig{})
	assert.ErrorIs(t, err, ErrConfigFileRead)
}

func TestLoadConfig_StrictMode(t *testing.T) {
	path := writeFile(t, "config.toml", `
name = "x"
unknown = "field"
`)

	loader := NewConfigLoader()
	loader.SetFlagSet(nil)
	loader.SetConfigFile(path)
	loader.SetStrictMode(true)

	err := loader.LoadConfig(&testConfig{})
	require.ErrorIs(t, err, ErrConfigUnmarshal)
	assert.Contains(t, err.Error(), path)

	loader.SetStrictMode(false)
	assert.NoError(t, loader.LoadConfig(&testConfig{}))
}

func TestSetConfigFileField(t *testing.T) {
	assert.ErrorIs(t, setConfigFileField(testConfig{}, "x"), ErrConfigNotPointer)

	s := "not a struct"
	assert.ErrorIs(t, setConfigFileField(&s, "x"), ErrConfigNotStruct)

	var noField struct{ Name string }
	assert.NoError(t, setConfigFileField(&noField, "x"))

	var wrongType struct{ ConfigFile int }
	assert.ErrorIs(t, setConfigFileField(&wrongType, "x"), ErrConfigFieldNotString)
}

func TestResolveConfigFile(t *testing.T) {
	assert.Equal(t, "/etc/explicit.toml", ResolveConfigFile("/etc/explicit.toml"))
}
