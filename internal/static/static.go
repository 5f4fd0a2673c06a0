package static

import (
	"embed"
	"io/fs"
)

// Static assets embedded at build time
//
//go:embed *.html
var assets embed.FS

// GetAssets returns the embedded filesystem containing static assets
func GetAssets() fs.FS {
	return assets
}

// GetLiveReloadTemplate returns the live reload script template
func GetLiveReloadTemplate() ([]byte, error) {
	return assets.ReadFile("livereload.html")
}
