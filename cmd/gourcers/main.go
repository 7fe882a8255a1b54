package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gourcers/cmd/gourcers/commands"
	"git.home.luguber.info/inful/gourcers/internal/version"
)

func main() {
	cli := &commands.CLI{}
	kctx := kong.Parse(cli,
		kong.Name("gourcers"),
		kong.Description("Render a gource visualization video spanning every GitHub repository you can see."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := kctx.Run(&commands.Global{})
	kctx.FatalIfErrorf(err)
}
