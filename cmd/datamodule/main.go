package main

import (
	"os"

	"github.com/larsks/datamodule/internal/activate"
	"github.com/larsks/datamodule/internal/cli"
	_ "github.com/larsks/datamodule/internal/logsetup"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return activate.NewConfig() },
		activate.NewHandler(os.Stdin, os.Stdout),
	)
}
