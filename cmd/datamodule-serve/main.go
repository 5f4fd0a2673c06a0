package main

import (
	"github.com/larsks/datamodule/internal/cli"
	_ "github.com/larsks/datamodule/internal/logsetup"
	"github.com/larsks/datamodule/internal/server"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return server.NewConfig() },
		server.NewServeHandler(),
	)
}
