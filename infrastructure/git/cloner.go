package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"golang.org/x/sync/semaphore"

	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/domain/service"
)

// Fetcher defaults.
const (
	DefaultCloneTimeout        = 5 * time.Minute
	DefaultMaxConcurrentClones = 4
)

// WorkspaceFetcher clones repositories into scoped temporary workspaces.
// Implements domain/service.Fetcher interface.
type WorkspaceFetcher struct {
	adapter    Adapter
	workDir    string
	timeout    time.Duration
	slots      *semaphore.Weighted
	localRepos bool
	logger     *slog.Logger
}

// FetcherOption configures a WorkspaceFetcher.
type FetcherOption func(*WorkspaceFetcher)

// WithCloneTimeout bounds each clone. Zero or negative disables the bound.
func WithCloneTimeout(d time.Duration) FetcherOption {
	return func(f *WorkspaceFetcher) { f.timeout = d }
}

// WithMaxConcurrentClones bounds how many clones run at once across callers.
func WithMaxConcurrentClones(n int) FetcherOption {
	return func(f *WorkspaceFetcher) {
		if n > 0 {
			f.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLocalRepositories accepts local paths and file:// URLs. Without it only
// network transports are cloned.
func WithLocalRepositories(allow bool) FetcherOption {
	return func(f *WorkspaceFetcher) { f.localRepos = allow }
}

// NewWorkspaceFetcher creates a WorkspaceFetcher. Workspaces are created under
// workDir, or the system temp directory when workDir is empty.
func NewWorkspaceFetcher(adapter Adapter, workDir string, logger *slog.Logger, opts ...FetcherOption) *WorkspaceFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &WorkspaceFetcher{
		adapter: adapter,
		workDir: workDir,
		timeout: DefaultCloneTimeout,
		slots:   semaphore.NewWeighted(DefaultMaxConcurrentClones),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch clones url into a fresh workspace. The workspace is removed before
// returning on any failure; on success the caller owns it and must Release it.
func (f *WorkspaceFetcher) Fetch(ctx context.Context, url string) (catalog.Workspace, error) {
	if strings.TrimSpace(url) == "" {
		return catalog.Workspace{}, catalog.ValidationError("URL is empty or whitespace")
	}
	if err := f.checkTransport(url); err != nil {
		return catalog.Workspace{}, err
	}

	if err := f.slots.Acquire(ctx, 1); err != nil {
		return catalog.Workspace{}, catalog.NewCloneError(url, err)
	}
	defer f.slots.Release(1)

	if f.workDir != "" {
		if err := os.MkdirAll(f.workDir, 0o755); err != nil {
			return catalog.Workspace{}, catalog.NewCloneError(url, fmt.Errorf("create work directory: %w", err))
		}
	}

	path, err := os.MkdirTemp(f.workDir, "gitsearch-*")
	if err != nil {
		return catalog.Workspace{}, catalog.NewCloneError(url, fmt.Errorf("create workspace: %w", err))
	}

	cloneCtx, cancel := f.cloneContext(ctx)
	defer cancel()

	start := time.Now()
	f.logger.Info("cloning repository",
		slog.String("uri", redactURL(url)),
		slog.String("path", path),
	)

	if err := f.adapter.CloneRepository(cloneCtx, url, path); err != nil {
		// Clean up on failure
		_ = os.RemoveAll(path)
		if errors.Is(cloneCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return catalog.Workspace{}, catalog.NewCloneTimeoutError(url, err)
		}
		return catalog.Workspace{}, catalog.NewCloneError(url, err)
	}

	attrs := []any{
		slog.String("uri", redactURL(url)),
		slog.Duration("duration", time.Since(start)),
	}
	if sha, err := f.adapter.HeadSHA(ctx, path); err == nil {
		attrs = append(attrs, slog.String("head", shortSHA(sha)))
	}
	f.logger.Info("cloned repository", attrs...)

	release := func() error {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove workspace %s: %w", path, err)
		}
		return nil
	}
	return catalog.NewWorkspace(path, url, release), nil
}

// checkTransport rejects URLs go-git cannot parse, and local repositories
// unless they are allowed.
func (f *WorkspaceFetcher) checkTransport(url string) error {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return catalog.ValidationError(fmt.Sprintf("invalid repository URL %q", redactURL(url)))
	}
	if endpoint.Protocol == "file" && !f.localRepos {
		return catalog.ValidationError(fmt.Sprintf("local repository %q is not allowed", redactURL(url)))
	}
	return nil
}

func (f *WorkspaceFetcher) cloneContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// Ensure WorkspaceFetcher implements Fetcher.
var _ service.Fetcher = (*WorkspaceFetcher)(nil)
