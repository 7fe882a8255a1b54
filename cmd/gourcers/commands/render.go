package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/gourcers/internal/config"
	"git.home.luguber.info/inful/gourcers/internal/display"
	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/pipeline"
	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

// RenderCmd implements the 'render' command, the default when no
// subcommand is named.
type RenderCmd struct {
	Token       string   `help:"GitHub personal access token (overrides config)" env:"GITHUB_TOKEN"`
	DataDir     string   `name:"data-dir" help:"Persistent directory for clones, logs, and state"`
	Output      string   `short:"o" help:"Output video path"`
	SkipClone   bool     `name:"skip-clone" help:"Skip repository sync and reuse existing clones"`
	Include     []string `short:"i" help:"Include rule, repeatable; evaluated after rules from the config"`
	IncludeFile string   `name:"include-file" help:"File with include rules, one per line"`
	GourceArgs  string   `name:"gource-args" help:"Arguments for the gource invocation"`
	FFmpegArgs  string   `name:"ffmpeg-args" help:"Arguments for the ffmpeg encoder"`
	Yes         bool     `short:"y" help:"Proceed without confirmation when using a temporary data directory"`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	r.applyOverrides(cfg)

	ws, err := buildWorkspace(cfg, r.Yes)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("workspace cleanup failed", logfields.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := pipeline.New(pipeline.Options{
		Config:     cfg,
		Workspace:  ws,
		NoProgress: root.NoProgress,
	})
	return p.Run(ctx)
}

// applyOverrides layers command-line flags over the loaded configuration.
// Inline rules append after the config's rules so they win on conflict.
func (r *RenderCmd) applyOverrides(cfg *config.Config) {
	if r.Token != "" {
		cfg.GitHub.Token = r.Token
	}
	if r.DataDir != "" {
		cfg.DataDir = r.DataDir
	}
	if r.Output != "" {
		cfg.Output = r.Output
	}
	if r.SkipClone {
		cfg.Clone.Skip = true
	}
	if r.IncludeFile != "" {
		cfg.IncludeFile = r.IncludeFile
	}
	cfg.Include = append(cfg.Include, r.Include...)
	if r.GourceArgs != "" {
		cfg.Gource.Args = r.GourceArgs
	}
	if r.FFmpegArgs != "" {
		cfg.FFmpeg.Args = r.FFmpegArgs
	}
}

// buildWorkspace picks where clones and generated logs live. Without a
// configured data directory everything goes into a throwaway temporary
// directory, which re-clones every repository and deletes the lot
// afterwards, so a terminal user is asked before committing to that.
func buildWorkspace(cfg *config.Config, assumeYes bool) (*workspace.Manager, error) {
	if cfg.DataDir != "" {
		return workspace.NewPersistentManager(cfg.DataDir), nil
	}
	if !assumeYes {
		if !display.IsTTY(os.Stdin) {
			return nil, fmt.Errorf("no data_dir configured and no terminal to ask on; pass --data-dir or --yes")
		}
		ok, err := confirm("No data directory configured. Clone into a temporary directory that is deleted after the render?")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("aborted")
		}
	}
	return workspace.NewManager(""), nil
}

func confirm(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
