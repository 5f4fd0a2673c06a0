package static

import (
	"bytes"
	"html/template"
)

// LiveReloadData holds data for rendering the live reload script
type LiveReloadData struct {
	// Endpoint is the websocket path the script connects to.
	Endpoint string
	// Message is the payload that triggers a reload.
	Message string
}

// RenderLiveReload renders the live reload script element
func RenderLiveReload(data LiveReloadData) (string, error) {
	text, err := GetLiveReloadTemplate()
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("livereload").Parse(string(text))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
