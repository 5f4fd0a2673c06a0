package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG config directories.
const AppName = "datamodule"

// configNames are the file names searched for, in order.
var configNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// DefaultConfigFile returns the first config file found in the XDG config
// search path ($XDG_CONFIG_HOME/datamodule, then $XDG_CONFIG_DIRS), or an
// empty string if there is none.
func DefaultConfigFile() string {
	for _, name := range configNames {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppName, name)); err == nil {
			return path
		}
	}
	return ""
}

// ResolveConfigFile returns explicit if set, otherwise DefaultConfigFile.
func ResolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultConfigFile()
}
