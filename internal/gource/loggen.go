package gource

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/gourcers/internal/git"
	"git.home.luguber.info/inful/gourcers/internal/github"
	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

// HeadStore records the commit each repository's log was generated from.
// Implementations return an empty head for repositories they have not seen.
type HeadStore interface {
	RepoHead(ctx context.Context, fullName string) (string, error)
	SetRepoHead(ctx context.Context, fullName, head string) error
}

// Result reports the outcome of log generation for one repository.
type Result struct {
	Repo    github.Repo
	Path    string // log file location
	Skipped bool   // head unchanged, existing log reused
	Err     error
}

// Generator produces per-repository gource custom logs under the data
// directory's gource/ subdirectory.
type Generator struct {
	dataDir  string
	parallel int
	heads    HeadStore
	onLog    func(Result)
}

// NewGenerator returns a Generator writing logs under dataDir.
func NewGenerator(dataDir string, parallel int) *Generator {
	if parallel < 1 {
		parallel = 1
	}
	return &Generator{dataDir: dataDir, parallel: parallel}
}

// WithHeadStore enables incremental generation backed by hs.
func (g *Generator) WithHeadStore(hs HeadStore) *Generator { g.heads = hs; return g }

// WithGenerateHook registers a callback invoked once per repository as its
// result becomes available. Callbacks run from worker goroutines.
func (g *Generator) WithGenerateHook(fn func(Result)) *Generator { g.onLog = fn; return g }

// LogPath returns the log file location for a repository.
func (g *Generator) LogPath(fullName string) string {
	return filepath.Join(g.dataDir, workspace.GourceDir, workspace.PathFriendly(fullName)+".txt")
}

// RepoPath returns the expected clone location for a repository.
func (g *Generator) RepoPath(fullName string) string {
	return filepath.Join(g.dataDir, workspace.ReposDir, workspace.PathFriendly(fullName))
}

// GenerateLog runs `gource --output-custom-log - <repoDir>` and returns the
// sanitized log: paths prefixed with the repository name, diacritics folded
// and quotes removed.
func GenerateLog(ctx context.Context, repoName, repoDir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gource", "--output-custom-log", "-", repoDir)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("gource log generation failed for %s: %w: %s", repoName, err, msg)
		}
		return nil, fmt.Errorf("gource log generation failed for %s: %w", repoName, err)
	}
	return sanitizeLog(stdout.Bytes(), repoName), nil
}

// GenerateAll produces logs for every repository with bounded parallelism.
// Per-repository failures are captured in the result slice, which always has
// one entry per input repository in input order. A non-nil error summarizes
// how many repositories failed.
func (g *Generator) GenerateAll(ctx context.Context, repos []github.Repo) ([]Result, error) {
	results := make([]Result, len(repos))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	for i, repo := range repos {
		eg.Go(func() error {
			results[i] = g.generate(ctx, repo)
			if g.onLog != nil {
				g.onLog(results[i])
			}
			return nil // failures are captured in Result.Err
		})
	}
	_ = eg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			slog.Error("gource log generation failed",
				logfields.Repository(res.Repo.FullName),
				logfields.Error(res.Err))
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d gource logs failed to generate", failed, len(repos))
	}
	return results, nil
}

func (g *Generator) generate(ctx context.Context, repo github.Repo) Result {
	res := Result{Repo: repo, Path: g.LogPath(repo.FullName)}
	repoDir := g.RepoPath(repo.FullName)

	head, err := git.Head(repoDir)
	if err != nil {
		slog.Debug("could not resolve repository head",
			logfields.Repository(repo.FullName), logfields.Error(err))
	}

	if g.heads != nil && head != "" {
		stored, err := g.heads.RepoHead(ctx, repo.FullName)
		switch {
		case err != nil:
			slog.Warn("repository head lookup failed, regenerating log",
				logfields.Repository(repo.FullName), logfields.Error(err))
		case stored == head:
			if _, statErr := os.Stat(res.Path); statErr == nil {
				slog.Debug("gource log up to date, skipping",
					logfields.Repository(repo.FullName), slog.String("head", head))
				res.Skipped = true
				return res
			}
		}
	}

	log, err := GenerateLog(ctx, repo.Name, repoDir)
	if err != nil {
		res.Err = err
		return res
	}
	if err := os.WriteFile(res.Path, log, 0o644); err != nil {
		res.Err = fmt.Errorf("writing gource log for %s: %w", repo.FullName, err)
		return res
	}

	if g.heads != nil && head != "" {
		if err := g.heads.SetRepoHead(ctx, repo.FullName, head); err != nil {
			slog.Warn("recording repository head failed",
				logfields.Repository(repo.FullName), logfields.Error(err))
		}
	}
	slog.Debug("generated gource log",
		logfields.Repository(repo.FullName), logfields.Path(res.Path))
	return res
}
