package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gourcers/internal/config"
	"git.home.luguber.info/inful/gourcers/internal/display"
	"git.home.luguber.info/inful/gourcers/internal/logging"
)

// Global carries state shared by subcommands. Out defaults to stdout and
// exists so tests can capture table output.
type Global struct {
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI is the root command grammar with global flags.
type CLI struct {
	Config     string           `short:"c" help:"Configuration file path" default:"gourcers.yaml"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	NoColor    bool             `name:"no-color" help:"Disable colored output"`
	NoProgress bool             `name:"no-progress" help:"Disable progress bars"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" default:"withargs" help:"Render the gource video (default command)"`
	Repos  ReposCmd  `cmd:"" help:"List visible repositories with their include-rule verdicts"`
	Doctor DoctorCmd `cmd:"" help:"Check that required external tools are installed"`
	Init   InitCmd   `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing and installs a provisional logger so
// configuration loading itself is logged. Commands that load the
// configuration reconfigure logging from it afterwards.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, "text")
	return nil
}

// loadConfig loads the configuration (defaults apply when the file is
// absent) and switches logging to the configured level and format.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.LoadIfPresent(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg, root.Verbose)
	return cfg, nil
}

// configureLogging installs the definitive slog handler. --verbose beats
// the configured level; the format is config-only.
func configureLogging(cfg *config.Config, verbose bool) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.Log.Format)
}

// colorEnabled decides whether tables get painted: an explicit --no-color
// wins, then the NO_COLOR convention, then whether stdout is a terminal.
func colorEnabled(root *CLI) bool {
	if root.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return display.IsTTY(os.Stdout)
}
