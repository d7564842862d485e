package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Serve roulette tables over WebSocket"`
	Play     PlayCmd          `cmd:"" help:"Play at a table in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate betting strategies over many sessions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ruleta"),
		kong.Description("European roulette table with a WebSocket server, terminal client and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
