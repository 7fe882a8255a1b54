package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gourcers/internal/display"
	"git.home.luguber.info/inful/gourcers/internal/github"
	"git.home.luguber.info/inful/gourcers/internal/pipeline"
	"git.home.luguber.info/inful/gourcers/internal/selector"
)

// ReposCmd implements the 'repos' command: list every visible repository
// and show what the include rules decide for each, without touching disk.
type ReposCmd struct {
	Token string `help:"GitHub personal access token (overrides config)" env:"GITHUB_TOKEN"`
	JSON  bool   `help:"Emit decisions as JSON instead of a table"`
}

func (r *ReposCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if r.Token != "" {
		cfg.GitHub.Token = r.Token
	}
	if cfg.GitHub.Token == "" {
		return fmt.Errorf("github token required: set github.token, GITHUB_TOKEN, or --token")
	}

	rs, err := pipeline.BuildRuleset(cfg)
	if err != nil {
		return err
	}
	if rs.Empty() {
		slog.Warn("no include rules configured; every repository will be excluded")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repos, err := github.NewClient(cfg.GitHub.Token).ListRepos(ctx)
	if err != nil {
		return err
	}

	records := make([]selector.RepoRecord, len(repos))
	for i, repo := range repos {
		records[i] = repo.RepoRecord
	}
	decisions := rs.Evaluate(records)

	if r.JSON {
		return writeDecisionsJSON(g.out(), decisions)
	}
	fmt.Fprintln(g.out(), display.DecisionTable(decisions, colorEnabled(root)))
	return nil
}

// decisionJSON is the machine-readable form of one verdict.
type decisionJSON struct {
	Repo      string `json:"repo"`
	Owner     string `json:"owner"`
	Fork      bool   `json:"fork"`
	Included  bool   `json:"included"`
	DecidedBy string `json:"decided_by,omitempty"`
	Verdict   string `json:"verdict"`
}

func writeDecisionsJSON(w io.Writer, decisions []selector.Decision) error {
	out := make([]decisionJSON, 0, len(decisions))
	for _, d := range decisions {
		dj := decisionJSON{
			Repo:     d.Repo.FullName,
			Owner:    d.Repo.Owner,
			Fork:     d.Repo.IsFork,
			Included: d.Included,
			Verdict:  d.Explain(),
		}
		if sel, ok := d.DecidedBy(); ok {
			dj.DecidedBy = sel.String()
		}
		out = append(out, dj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
