package git

import (
	"context"
	"fmt"
	"log/slog"

	gogit "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// tokenUsername is accepted by GitHub, GitLab and Gitea for token auth.
const tokenUsername = "x-access-token"

// GoGitAdapter implements Adapter using go-git library.
type GoGitAdapter struct {
	logger *slog.Logger
	cfg    adapterConfig
}

// NewGoGitAdapter creates a new GoGitAdapter.
func NewGoGitAdapter(logger *slog.Logger, opts ...AdapterOption) *GoGitAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoGitAdapter{logger: logger, cfg: newAdapterConfig(opts)}
}

// CloneRepository clones a repository to local path.
func (g *GoGitAdapter) CloneRepository(ctx context.Context, remoteURI string, localPath string) error {
	g.logger.Debug("cloning repository",
		slog.String("uri", redactURL(remoteURI)),
		slog.String("path", localPath),
		slog.Int("depth", g.cfg.depth),
	)

	options := &gogit.CloneOptions{
		URL:          remoteURI,
		Depth:        g.cfg.depth,
		SingleBranch: g.cfg.depth > 0,
		Tags:         gogit.NoTags,
		Progress:     nil,
	}
	if g.cfg.authToken != "" && isHTTPURL(remoteURI) {
		options.Auth = &githttp.BasicAuth{
			Username: tokenUsername,
			Password: g.cfg.authToken,
		}
	}

	_, err := gogit.PlainCloneContext(ctx, localPath, false, options)
	if err != nil {
		return fmt.Errorf("clone repository: %w", err)
	}

	return nil
}

// HeadSHA returns the commit checked out in localPath.
func (g *GoGitAdapter) HeadSHA(_ context.Context, localPath string) (string, error) {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

var _ Adapter = (*GoGitAdapter)(nil)
