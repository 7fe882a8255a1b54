package commands

import (
	"fmt"

	"git.home.luguber.info/inful/gourcers/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Wrote starter configuration to %s\n", root.Config)
	fmt.Fprintln(g.out(), "Fill in github.token (or set GITHUB_TOKEN) and adjust the include rules.")
	return nil
}
