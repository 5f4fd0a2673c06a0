// Package logsetup configures the standard logger. Commands import it for
// its side effects.
package logsetup

import (
	"log"
	"os"
)

func init() {
	Configure(false)
}

// Configure sets the flags and output of the standard logger. Debug output
// adds microseconds and the calling file.
func Configure(debug bool) {
	flags := log.LstdFlags
	if debug {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	log.SetFlags(flags)
	log.SetOutput(os.Stderr)
}
