// Package pipeline sequences a full render run: list repositories from
// GitHub, filter them through the include rules, sync clones, generate gource
// logs, merge and sort them, and pipe the combined log through gource into
// ffmpeg.
//
// Stages run in a fixed order and fail fast. Everything that can be rejected
// without side effects (configuration, rule parsing, missing tools) is
// checked before the workspace is touched or the network is hit.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/gourcers/internal/config"
	"git.home.luguber.info/inful/gourcers/internal/display"
	"git.home.luguber.info/inful/gourcers/internal/git"
	"git.home.luguber.info/inful/gourcers/internal/github"
	"git.home.luguber.info/inful/gourcers/internal/gource"
	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/preflight"
	"git.home.luguber.info/inful/gourcers/internal/selector"
	"git.home.luguber.info/inful/gourcers/internal/state"
	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

// RepoLister lists the repositories visible to the authenticated user.
// *github.Client implements it; tests substitute a fake.
type RepoLister interface {
	ListRepos(ctx context.Context) ([]github.Repo, error)
}

// Options configures a Pipeline. Config and Workspace are required; Lister
// defaults to a real GitHub client built from the configured token.
type Options struct {
	Config     *config.Config
	Workspace  *workspace.Manager
	Lister     RepoLister
	NoProgress bool
}

// Pipeline owns the state threaded through one render run.
type Pipeline struct {
	cfg        *config.Config
	ws         *workspace.Manager
	lister     RepoLister
	noProgress bool

	// populated as stages run
	ruleset   *selector.Ruleset
	dataDir   string
	store     *state.Store
	runID     string
	repos     []github.Repo
	included  []github.Repo
	decisions []selector.Decision
	sortedLog string
}

// New creates a Pipeline from options.
func New(opts Options) *Pipeline {
	return &Pipeline{
		cfg:        opts.Config,
		ws:         opts.Workspace,
		lister:     opts.Lister,
		noProgress: opts.NoProgress,
	}
}

// BuildRuleset compiles the include rules from the configuration: the rule
// file first, then the inline rules, so inline rules override the file
// wherever both match the same repository.
func BuildRuleset(cfg *config.Config) (*selector.Ruleset, error) {
	rs := &selector.Ruleset{}
	if cfg.IncludeFile != "" {
		fromFile, err := selector.LoadFile(cfg.IncludeFile)
		if err != nil {
			return nil, err
		}
		rs.Merge(fromFile)
	}
	inline, err := selector.FromLines(cfg.Include)
	if err != nil {
		return nil, err
	}
	rs.Merge(inline)
	return rs, nil
}

// Run executes the full render sequence. It returns nil both on a completed
// render and when no repository matches the include rules; the latter is a
// warning, not a failure.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	started := time.Now()

	p.runID = state.NewRunID()
	prevLogger := slog.Default()
	slog.SetDefault(prevLogger.With(logfields.RunID(p.runID)))
	defer slog.SetDefault(prevLogger)

	if err := p.validate(); err != nil {
		return err
	}
	p.ruleset, err = BuildRuleset(p.cfg)
	if err != nil {
		return err
	}
	if p.ruleset.Empty() {
		slog.Warn("no include rules configured; every repository will be excluded")
	}

	tools := preflight.Check(ctx)
	if err := preflight.Err(tools); err != nil {
		return err
	}

	if err := p.ws.Create(); err != nil {
		return err
	}
	p.dataDir = p.ws.Path()
	slog.Debug("workspace ready", logfields.Path(p.dataDir), slog.Bool("persistent", p.ws.Persistent()))

	p.openState(ctx)
	defer p.closeState()

	display.Step(1, "listing repositories from GitHub")
	if err := p.timed(ctx, "list", p.stageList); err != nil {
		return err
	}
	if err := p.timed(ctx, "filter", p.stageFilter); err != nil {
		return err
	}

	p.recordRunStart(ctx)
	defer func() { p.recordRunFinish(ctx, err == nil) }()

	if len(p.included) == 0 {
		slog.Warn("no repositories matched the include rules; nothing to render")
		return nil
	}

	if p.cfg.Clone.Skip {
		display.Step(2, "syncing repositories (skipped)")
		slog.Info("repository sync skipped", logfields.Count(len(p.included)))
	} else {
		display.Step(2, "syncing repositories")
		if err := p.timed(ctx, "sync", p.stageSync); err != nil {
			return err
		}
	}

	display.Step(3, "generating gource logs")
	if err := p.timed(ctx, "generate", p.stageGenerate); err != nil {
		return err
	}

	display.Step(4, "combining and sorting logs")
	if err := p.timed(ctx, "merge", p.stageMerge); err != nil {
		return err
	}

	display.Step(5, "rendering video")
	if err := p.timed(ctx, "render", p.stageRender); err != nil {
		return err
	}

	slog.Info("render run complete",
		logfields.Output(p.cfg.Output),
		logfields.Count(len(p.included)),
		logfields.DurationMS(float64(time.Since(started))/float64(time.Millisecond)))
	return nil
}

// validate rejects configurations the render command cannot work with.
// Structural validation already happened at load time; this covers the
// fields only a render run needs.
func (p *Pipeline) validate() error {
	if p.cfg.GitHub.Token == "" {
		return fmt.Errorf("github token required: set github.token, GITHUB_TOKEN, or --token")
	}
	if p.cfg.Output == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	return nil
}

// timed runs one stage with a context check, duration logging, and error
// wrapping under the stage name.
func (p *Pipeline) timed(ctx context.Context, stage string, fn func(context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	start := time.Now()
	err := fn(ctx)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		slog.Error("stage failed", logfields.Stage(stage), logfields.DurationMS(elapsed), logfields.Error(err))
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	slog.Debug("stage finished", logfields.Stage(stage), logfields.DurationMS(elapsed))
	return nil
}

func (p *Pipeline) stageList(ctx context.Context) error {
	lister := p.lister
	if lister == nil {
		lister = github.NewClient(p.cfg.GitHub.Token)
	}
	repos, err := lister.ListRepos(ctx)
	if err != nil {
		return err
	}
	p.repos = repos
	slog.Info("listed repositories", logfields.Count(len(repos)))
	return nil
}

func (p *Pipeline) stageFilter(context.Context) error {
	records := make([]selector.RepoRecord, len(p.repos))
	for i, r := range p.repos {
		records[i] = r.RepoRecord
	}
	p.decisions = p.ruleset.Evaluate(records)
	for i, d := range p.decisions {
		if d.Included {
			p.included = append(p.included, p.repos[i])
			slog.Info("repository included",
				logfields.Repository(d.Repo.FullName), slog.String("verdict", d.Explain()))
		} else {
			slog.Debug("repository excluded",
				logfields.Repository(d.Repo.FullName),
				slog.String("verdict", d.Explain()),
				slog.String("trail", trailString(d)))
		}
	}
	slog.Info("filtered repositories",
		logfields.Count(len(p.included)), slog.Int("excluded", len(p.repos)-len(p.included)))
	return nil
}

func (p *Pipeline) stageSync(ctx context.Context) error {
	prog := p.newProgress(len(p.included))
	defer prog.Stop()

	client := git.NewClient(p.ws.SubdirPath(workspace.ReposDir), p.cfg.Clone, p.cfg.GitHub.Token).
		WithSyncHook(func(r git.Result) {
			if r.Err != nil {
				prog.Fail(r.Repo.FullName)
			} else {
				prog.Done(r.Repo.FullName)
			}
		})
	for _, repo := range p.included {
		prog.Start(repo.FullName)
	}
	_, err := client.SyncAll(ctx, p.included)
	return err
}

func (p *Pipeline) stageGenerate(ctx context.Context) error {
	prog := p.newProgress(len(p.included))
	defer prog.Stop()

	gen := gource.NewGenerator(p.dataDir, p.cfg.Clone.Parallel).
		WithGenerateHook(func(r gource.Result) {
			if r.Err != nil {
				prog.Fail(r.Repo.FullName)
			} else {
				prog.Done(r.Repo.FullName)
			}
		})
	if p.store != nil {
		gen = gen.WithHeadStore(p.store)
	}
	for _, repo := range p.included {
		prog.Start(repo.FullName)
	}
	_, err := gen.GenerateAll(ctx, p.included)
	return err
}

func (p *Pipeline) stageMerge(context.Context) error {
	sorted, err := gource.CombineAndSort(p.dataDir)
	if err != nil {
		return err
	}
	p.sortedLog = sorted
	return nil
}

func (p *Pipeline) stageRender(ctx context.Context) error {
	opts := gource.RenderOptions{
		GourceArgs: gource.SplitArgs(p.cfg.Gource.Args),
		FFmpegArgs: gource.SplitArgs(p.cfg.FFmpeg.Args),
		Framerate:  p.cfg.FFmpeg.Framerate,
	}
	return gource.Render(ctx, p.sortedLog, p.cfg.Output, opts)
}

// openState opens the run database inside the workspace. The store is an
// optimization, not a dependency: on failure the run proceeds without
// incremental skips or history, with a warning.
func (p *Pipeline) openState(ctx context.Context) {
	path := filepath.Join(p.dataDir, workspace.StateFile)
	store, err := state.Open(path)
	if err != nil {
		slog.Warn("state database unavailable, all logs will be regenerated",
			logfields.Path(path), logfields.Error(err))
		return
	}
	p.store = store

	if runs, err := store.LastRuns(ctx, 1); err == nil && len(runs) > 0 {
		prev := runs[0]
		slog.Debug("previous run",
			logfields.RunID(prev.ID),
			logfields.Output(prev.Output),
			slog.Bool("ok", prev.OK),
			slog.Time("started_at", prev.StartedAt))
	}
}

func (p *Pipeline) closeState() {
	if p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		slog.Warn("closing state database", logfields.Error(err))
	}
}

func (p *Pipeline) recordRunStart(ctx context.Context) {
	if p.store == nil {
		return
	}
	run := state.Run{
		ID:            p.runID,
		StartedAt:     time.Now(),
		ReposTotal:    len(p.repos),
		ReposIncluded: len(p.included),
		Output:        p.cfg.Output,
	}
	if err := p.store.StartRun(ctx, run); err != nil {
		slog.Warn("recording run start", logfields.Error(err))
	}
}

// recordRunFinish writes the final verdict. It must survive cancellation:
// an interrupted run still gets its finished_at and ok=false row.
func (p *Pipeline) recordRunFinish(ctx context.Context, ok bool) {
	if p.store == nil {
		return
	}
	if err := p.store.FinishRun(context.WithoutCancel(ctx), p.runID, ok); err != nil {
		slog.Warn("recording run finish", logfields.Error(err))
	}
}

func (p *Pipeline) newProgress(expected int) *display.Progress {
	enabled := !p.noProgress && display.IsTTY(os.Stdout)
	return display.NewProgress(os.Stdout, enabled, expected)
}

// trailString renders a decision trail as one compact token per rule, '+'
// for matched and '-' for unmatched, in evaluation order.
func trailString(d selector.Decision) string {
	parts := make([]string, 0, len(d.Trail))
	for _, e := range d.Trail {
		mark := "-"
		if e.Matched {
			mark = "+"
		}
		parts = append(parts, mark+e.Selector.String())
	}
	return strings.Join(parts, " ")
}
