package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockConfig implements Configurable for testing
type MockConfig struct {
	ConfigFile string
	Attribute  string
	LoadError  error
	Loaded     bool
}

func (m *MockConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&m.ConfigFile, "config", "", "Config file")
	fs.StringVar(&m.Attribute, "attribute", "data-module", "Module attribute")
}

func (m *MockConfig) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	m.Loaded = true
	return m.LoadError
}

// MockHandler implements CommandHandler for testing
type MockHandler struct {
	StartCalled bool
	StartError  error
}

func (m *MockHandler) Start(config Configurable) error {
	m.StartCalled = true
	return m.StartError
}

func newTestCLI() (*BaseCLI, *bytes.Buffer) {
	var stdout bytes.Buffer
	return NewBaseCLI(&stdout, &bytes.Buffer{}), &stdout
}

func TestParseArgsStandard_Version(t *testing.T) {
	cli, _ := newTestCLI()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := &MockConfig{}

	cmdArgs, err := cli.ParseArgsStandardWithFlagSet([]string{"--version"}, func() Configurable { return cfg }, fs)
	require.NoError(t, err)

	assert.Equal(t, CommandVersion, cmdArgs.Command)
	assert.False(t, cfg.Loaded, "config should not be loaded for --version")
}

func TestParseArgsStandard_Start(t *testing.T) {
	cli, _ := newTestCLI()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	args := []string{"--attribute", "data-behavior", "page.html"}
	cmdArgs, err := cli.ParseArgsStandardWithFlagSet(args, func() Configurable { return &MockConfig{} }, fs)
	require.NoError(t, err)

	assert.Equal(t, CommandStart, cmdArgs.Command)
	assert.Equal(t, []string{"page.html"}, cmdArgs.Args)

	cfg, ok := cmdArgs.Config.(*MockConfig)
	require.True(t, ok)
	assert.Equal(t, "data-behavior", cfg.Attribute)
	assert.True(t, cfg.Loaded)
}

func TestParseArgsStandard_BadFlag(t *testing.T) {
	cli, _ := newTestCLI()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})

	_, err := cli.ParseArgsStandardWithFlagSet([]string{"--no-such-flag"}, func() Configurable { return &MockConfig{} }, fs)
	assert.Error(t, err)
}

func TestParseArgsStandard_LoadError(t *testing.T) {
	cli, _ := newTestCLI()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	loadErr := errors.New("bad config")

	_, err := cli.ParseArgsStandardWithFlagSet(nil, func() Configurable { return &MockConfig{LoadError: loadErr} }, fs)
	assert.ErrorIs(t, err, loadErr)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		startErr    error
		wantErr     bool
		wantStarted bool
	}{
		{name: "version", command: CommandVersion},
		{name: "start", command: CommandStart, wantStarted: true},
		{name: "start fails", command: CommandStart, startErr: errors.New("boom"), wantErr: true, wantStarted: true},
		{name: "unknown", command: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, stdout := newTestCLI()
			handler := &MockHandler{StartError: tt.startErr}

			err := cli.Execute(&CommandArgs{Command: tt.command, Config: &MockConfig{}}, handler)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStarted, handler.StartCalled)

			if tt.command == CommandVersion {
				assert.Contains(t, stdout.String(), "datamodule")
			}
		})
	}
}
