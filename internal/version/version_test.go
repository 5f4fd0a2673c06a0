package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	WriteVersion(&buf, "datamodule")

	out := buf.String()
	assert.Contains(t, out, "datamodule "+Version)
	assert.Contains(t, out, "commit "+Commit)
}
