// Package version reports build information injected at link time.
package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Set with -ldflags "-X github.com/larsks/datamodule/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line version description.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

// WriteVersion writes the version of the named program to w.
func WriteVersion(w io.Writer, program string) {
	fmt.Fprintf(w, "%s %s\n", program, String())
}

// ShowVersion prints the version of the running program to stdout.
func ShowVersion() {
	WriteVersion(os.Stdout, programName())
}

func programName() string {
	if len(os.Args) == 0 {
		return "datamodule"
	}
	return filepath.Base(os.Args[0])
}
