// Package git provides repository cloning and working tree enumeration.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Provider names a git implementation.
type Provider string

// Provider values.
const (
	ProviderGoGit Provider = "gogit"
	ProviderGitea Provider = "gitea"
)

// ParseProvider parses a provider name, defaulting to go-git.
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gitea", "git", "native":
		return ProviderGitea
	default:
		return ProviderGoGit
	}
}

// Adapter performs the low-level git operations the fetcher needs.
type Adapter interface {
	// CloneRepository clones remoteURI into localPath, which must be empty.
	CloneRepository(ctx context.Context, remoteURI string, localPath string) error

	// HeadSHA returns the commit checked out in localPath.
	HeadSHA(ctx context.Context, localPath string) (string, error)
}

// AdapterOption configures an Adapter.
type AdapterOption func(*adapterConfig)

type adapterConfig struct {
	depth     int
	authToken string
}

// WithDepth limits clone history to n commits. Zero clones full history.
func WithDepth(n int) AdapterOption {
	return func(c *adapterConfig) {
		if n >= 0 {
			c.depth = n
		}
	}
}

// WithAuthToken authenticates HTTP(S) clones with a personal access token.
func WithAuthToken(token string) AdapterOption {
	return func(c *adapterConfig) { c.authToken = token }
}

func newAdapterConfig(opts []AdapterOption) adapterConfig {
	cfg := adapterConfig{depth: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewAdapter creates the Adapter for provider.
func NewAdapter(provider Provider, logger *slog.Logger, opts ...AdapterOption) (Adapter, error) {
	switch provider {
	case ProviderGitea:
		a, err := NewGiteaAdapter(logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("gitea adapter: %w", err)
		}
		return a, nil
	case ProviderGoGit, "":
		return NewGoGitAdapter(logger, opts...), nil
	default:
		return nil, fmt.Errorf("unknown git provider %q", provider)
	}
}

// isHTTPURL reports whether remoteURI uses an HTTP(S) transport.
func isHTTPURL(remoteURI string) bool {
	lower := strings.ToLower(remoteURI)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// redactURL strips credentials from a URL for logging.
func redactURL(remoteURI string) string {
	u, err := url.Parse(remoteURI)
	if err != nil || u.User == nil {
		return remoteURI
	}
	return u.Redacted()
}
