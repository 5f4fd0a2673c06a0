package main

import (
	"fmt"
	"os"

	"github.com/larsks/datamodule/internal/activate"
	"github.com/larsks/datamodule/internal/config"
	"github.com/larsks/datamodule/internal/server"
	"github.com/larsks/datamodule/internal/version"
	"github.com/spf13/pflag"
)

func main() {
	var (
		versionFlag = pflag.Bool("version", false, "Show version and exit")
		configType  = pflag.String("type", "", "Configuration type: serve or activate")
		configFile  = pflag.String("config", "", "Configuration file to validate")
		helpFlag    = pflag.BoolP("help", "h", false, "Show help")
	)

	pflag.Parse()

	if *versionFlag {
		version.ShowVersion()
		os.Exit(0)
	}

	if *helpFlag {
		usage()
		os.Exit(0)
	}

	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --config flag is required\n\n")
		usage()
		os.Exit(1)
	}

	if *configType == "" {
		fmt.Fprintf(os.Stderr, "Error: --type flag is required\n\n")
		usage()
		os.Exit(1)
	}

	if _, err := os.Stat(*configFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: Configuration file %s does not exist\n", *configFile)
		os.Exit(1)
	}

	var err error
	switch *configType {
	case "serve":
		err = validateServeConfig(*configFile)
	case "activate":
		err = validateActivateConfig(*configFile)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown configuration type '%s'. Must be 'serve' or 'activate'\n", *configType)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Configuration file %s is valid for %s\n", *configFile, *configType)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s --type TYPE --config FILE\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "A tool for validating datamodule configuration files.\n\n")

	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s --type serve --config datamodule-serve.toml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --type activate --config datamodule.toml\n", os.Args[0])
}

// strictLoad loads configFile into cfg rejecting unknown keys.
func strictLoad(cfg any, configFile string) error {
	loader := config.NewConfigLoader()
	loader.SetFlagSet(nil)
	loader.SetConfigFile(configFile)
	loader.SetStrictMode(true)
	return loader.LoadConfig(cfg)
}

func validateServeConfig(configFile string) error {
	cfg := server.NewConfig()
	if err := strictLoad(cfg, configFile); err != nil {
		return fmt.Errorf("failed to load serve configuration: %v", err)
	}
	return cfg.Validate()
}

func validateActivateConfig(configFile string) error {
	cfg := activate.NewConfig()
	if err := strictLoad(cfg, configFile); err != nil {
		return fmt.Errorf("failed to load activate configuration: %v", err)
	}
	return cfg.Validate()
}
