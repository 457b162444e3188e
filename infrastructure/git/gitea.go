package git

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"

	giteagit "code.gitea.io/gitea/modules/git"
	"code.gitea.io/gitea/modules/git/gitcmd"
	"code.gitea.io/gitea/modules/setting"
)

// GiteaAdapter implements Adapter using Gitea's git module (native git binary).
type GiteaAdapter struct {
	logger *slog.Logger
	cfg    adapterConfig
}

var giteaInitOnce sync.Once
var giteaInitErr error

// NewGiteaAdapter creates a new GiteaAdapter. It initializes the Gitea git
// module once (verifying the git binary is available).
func NewGiteaAdapter(logger *slog.Logger, opts ...AdapterOption) (*GiteaAdapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("git is not installed or not in PATH: install git and try again")
	}

	giteaInitOnce.Do(func() {
		// Isolate git config from the user's home directory.
		home, err := os.MkdirTemp("", "gitsearch-git-home-*")
		if err != nil {
			giteaInitErr = fmt.Errorf("create git home directory: %w", err)
			return
		}
		setting.Git.HomePath = home

		giteaInitErr = giteagit.InitSimple()
	})
	if giteaInitErr != nil {
		return nil, fmt.Errorf("init git: %w", giteaInitErr)
	}

	return &GiteaAdapter{logger: logger, cfg: newAdapterConfig(opts)}, nil
}

// CloneRepository clones a repository to local path.
func (g *GiteaAdapter) CloneRepository(ctx context.Context, remoteURI string, localPath string) error {
	g.logger.Debug("cloning repository",
		slog.String("uri", redactURL(remoteURI)),
		slog.String("path", localPath),
		slog.Int("depth", g.cfg.depth),
	)

	err := giteagit.Clone(ctx, g.authenticated(remoteURI), localPath, giteagit.CloneRepoOptions{
		Depth: g.cfg.depth,
		Quiet: true,
	})
	if err != nil {
		return fmt.Errorf("clone repository: %w", err)
	}

	return nil
}

// HeadSHA returns the commit checked out in localPath.
func (g *GiteaAdapter) HeadSHA(ctx context.Context, localPath string) (string, error) {
	stdout, _, err := gitcmd.NewCommand("rev-parse", "HEAD").
		RunStdString(ctx, &gitcmd.RunOpts{Dir: localPath})
	if err != nil {
		return "", fmt.Errorf("rev-parse HEAD: %w", err)
	}
	return strings.TrimSpace(stdout), nil
}

// authenticated embeds the auth token into HTTP(S) URLs; the git binary has
// no other way to receive it without a credential helper.
func (g *GiteaAdapter) authenticated(remoteURI string) string {
	if g.cfg.authToken == "" || !isHTTPURL(remoteURI) {
		return remoteURI
	}
	u, err := url.Parse(remoteURI)
	if err != nil || u.User != nil {
		return remoteURI
	}
	u.User = url.UserPassword(tokenUsername, g.cfg.authToken)
	return u.String()
}

var _ Adapter = (*GiteaAdapter)(nil)
