package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/gourcers/internal/display"
	"git.home.luguber.info/inful/gourcers/internal/preflight"
)

// DoctorCmd implements the 'doctor' command. It probes the external tools
// a render needs and exits nonzero when any are missing.
type DoctorCmd struct{}

func (d *DoctorCmd) Run(g *Global, root *CLI) error {
	tools := preflight.Check(context.Background())
	fmt.Fprintln(g.out(), display.ToolTable(tools, colorEnabled(root)))
	return preflight.Err(tools)
}
