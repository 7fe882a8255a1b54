package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/gourcers/internal/config"
	"git.home.luguber.info/inful/gourcers/internal/github"
	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/retry"
	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

// Client handles Git operations against the repos directory.
type Client struct {
	reposDir   string
	protocol   string
	token      string
	depth      int
	parallel   int
	maxRetries int
	policy     retry.Policy
	progress   io.Writer    // go-git progress sink, nil disables
	onSync     func(Result) // called once per repository as it finishes
}

// Result is the per-repository outcome of a sync.
type Result struct {
	Repo github.Repo
	Path string
	Err  error
}

// NewClient creates a Git client rooted at reposDir, configured from the
// clone section.
func NewClient(reposDir string, cfg config.CloneConfig, token string) *Client {
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	return &Client{
		reposDir:   reposDir,
		protocol:   cfg.Protocol,
		token:      token,
		depth:      cfg.Depth,
		parallel:   parallel,
		maxRetries: cfg.MaxRetries,
		policy:     retry.FromCloneConfig(cfg),
	}
}

// WithProgress attaches a writer for go-git transfer progress (fluent helper).
func (c *Client) WithProgress(w io.Writer) *Client { c.progress = w; return c }

// WithSyncHook registers a callback invoked once per repository as its sync
// completes. SyncAll runs repositories concurrently, so the callback must be
// safe for concurrent use.
func (c *Client) WithSyncHook(fn func(Result)) *Client { c.onSync = fn; return c }

// Dest returns the clone destination for a repository full name.
func (c *Client) Dest(fullName string) string {
	return filepath.Join(c.reposDir, workspace.PathFriendly(fullName))
}

// remoteURL picks the clone URL and auth method per the configured protocol.
func (c *Client) remoteURL(repo github.Repo) (string, transport.AuthMethod, error) {
	switch c.protocol {
	case config.ProtocolSSH:
		if repo.SSHURL == "" {
			return "", nil, &UnsupportedProtocolError{Op: "clone", URL: repo.FullName,
				Err: errors.New("repository has no ssh url")}
		}
		// nil auth lets go-git fall back to the ssh agent
		return repo.SSHURL, nil, nil
	default:
		var auth transport.AuthMethod
		if c.token != "" {
			auth = &githttp.BasicAuth{Username: "git", Password: c.token}
		}
		return repo.CloneURL, auth, nil
	}
}

// Clone clones a repository into dest, replacing any partial leftovers.
func (c *Client) Clone(ctx context.Context, repo github.Repo, dest string) error {
	url, auth, err := c.remoteURL(repo)
	if err != nil {
		return err
	}

	slog.Debug("Cloning repository", logfields.Repository(repo.FullName), logfields.URL(url), logfields.Path(dest))

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove existing directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: url, Auth: auth, Progress: c.progress}
	if c.depth > 0 {
		cloneOptions.Depth = c.depth
	}

	repository, err := git.PlainCloneContext(ctx, dest, false, cloneOptions)
	if err != nil {
		return classifyGitError("clone", url, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.Repository(repo.FullName), slog.String("commit", shortHash(ref.Hash().String())))
	} else {
		slog.Info("Repository cloned", logfields.Repository(repo.FullName))
	}
	return nil
}

// Update pulls origin into an existing clone. An already up-to-date
// worktree is success.
func (c *Client) Update(ctx context.Context, repo github.Repo, dest string) error {
	url, auth, err := c.remoteURL(repo)
	if err != nil {
		return err
	}

	repository, err := git.PlainOpen(dest)
	if err != nil {
		return fmt.Errorf("open repo: %w", err)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	pullOptions := &git.PullOptions{RemoteName: "origin", Auth: auth, Progress: c.progress}
	if c.depth > 0 {
		pullOptions.Depth = c.depth
	}

	err = wt.PullContext(ctx, pullOptions)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("Repository already up to date", logfields.Repository(repo.FullName))
		return nil
	}
	if err != nil {
		return classifyGitError("pull", url, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository updated", logfields.Repository(repo.FullName), slog.String("commit", shortHash(ref.Hash().String())))
	} else {
		slog.Info("Repository updated", logfields.Repository(repo.FullName))
	}
	return nil
}

// Sync clones the repository or updates an existing clone, with retries for
// transient failures. A diverged local copy is thrown away and re-cloned:
// the repos directory is a cache, not a working tree anyone edits.
func (c *Client) Sync(ctx context.Context, repo github.Repo) (string, error) {
	dest := c.Dest(repo.FullName)

	op := "clone"
	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		op = "update"
	}

	err := c.withRetry(ctx, op, repo.FullName, func() error {
		if op == "update" {
			uerr := c.Update(ctx, repo, dest)
			var diverged *RemoteDivergedError
			if errors.As(uerr, &diverged) {
				slog.Warn("local clone diverged from remote, re-cloning", logfields.Repository(repo.FullName))
				return c.Clone(ctx, repo, dest)
			}
			return uerr
		}
		return c.Clone(ctx, repo, dest)
	})
	return dest, err
}

// SyncAll syncs every repository with bounded parallelism. Failures are
// captured per repository; output order matches input order. The returned
// error summarizes how many repositories failed.
func (c *Client) SyncAll(ctx context.Context, repos []github.Repo) ([]Result, error) {
	if err := os.MkdirAll(c.reposDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create repos directory: %w", err)
	}

	results := make([]Result, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, repo := range repos {
		g.Go(func() error {
			path, err := c.Sync(gctx, repo)
			results[i] = Result{Repo: repo, Path: path, Err: err}
			if c.onSync != nil {
				c.onSync(results[i])
			}
			return nil // errors captured in Result.Err
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error("repository sync failed", logfields.Repository(r.Repo.FullName), logfields.Error(r.Err))
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d repositories failed to sync", failed, len(repos))
	}
	return results, nil
}

// withRetry wraps an operation with retry logic based on the clone configuration.
func (c *Client) withRetry(ctx context.Context, op, fullName string, fn func() error) error {
	if c.maxRetries <= 0 {
		return fn()
	}

	// Adaptive delay multipliers keyed by transient error type
	const (
		multRateLimit      = 3.0
		multNetworkTimeout = 1.0
	)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying git operation", slog.String("operation", op), logfields.Repository(fullName), slog.Int("attempt", attempt))
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if isPermanentGitError(err) {
			slog.Error("permanent git error", slog.String("operation", op), logfields.Repository(fullName), logfields.Error(err))
			return err
		}
		if attempt == c.maxRetries {
			break
		}
		delay := c.policy.Delay(attempt + 1)
		switch classifyTransientType(err) {
		case transientTypeRateLimit:
			delay = time.Duration(float64(delay) * multRateLimit)
		case transientTypeNetworkTimeout:
			delay = time.Duration(float64(delay) * multNetworkTimeout)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("git %s failed after retries: %w", op, lastErr)
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
