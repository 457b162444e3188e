package gitsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/gitsearch/domain/catalog"
	domainservice "github.com/helixml/gitsearch/domain/service"
	"github.com/helixml/gitsearch/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL               string
	workDir             string
	gitProvider         string
	gitAuthToken        string
	cloneTimeout        time.Duration
	cloneDepth          int
	maxConcurrentClones int
	seed                catalog.Entry
	apiKeys             []string
	registerer          prometheus.Registerer
	resetOnStart        bool
	localRepos          bool
	fetcher             domainservice.Fetcher
	logger              *slog.Logger
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		gitProvider:         config.DefaultGitProvider,
		cloneTimeout:        config.DefaultCloneTimeout,
		cloneDepth:          config.DefaultCloneDepth,
		maxConcurrentClones: config.DefaultMaxConcurrentClones,
		seed:                catalog.DefaultSeed(),
		resetOnStart:        true,
	}
}

// registry returns where metrics are registered and read from. Without a
// registerer the client gets a private registry.
func (c *clientConfig) registry() (prometheus.Registerer, prometheus.Gatherer) {
	if c.registerer == nil {
		reg := prometheus.NewRegistry()
		return reg, reg
	}
	if g, ok := c.registerer.(prometheus.Gatherer); ok {
		return c.registerer, g
	}
	return c.registerer, prometheus.DefaultGatherer
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores the catalog in a SQLite database file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores the catalog in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets the database URL directly (sqlite:///… or
// postgres://…). An empty URL keeps the catalog in memory.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithWorkDir sets the parent directory for clone workspaces. Defaults to
// the system temp directory.
func WithWorkDir(dir string) Option {
	return func(c *clientConfig) {
		c.workDir = dir
	}
}

// WithGitProvider selects the git implementation ("gogit" or "gitea").
func WithGitProvider(provider string) Option {
	return func(c *clientConfig) {
		c.gitProvider = provider
	}
}

// WithGitAuthToken authenticates HTTP(S) clones with a personal access token.
func WithGitAuthToken(token string) Option {
	return func(c *clientConfig) {
		c.gitAuthToken = token
	}
}

// WithCloneTimeout bounds each clone. Values <= 0 are ignored.
func WithCloneTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.cloneTimeout = d
		}
	}
}

// WithCloneDepth limits clone history. Zero clones full history; negative
// values are ignored.
func WithCloneDepth(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.cloneDepth = n
		}
	}
}

// WithMaxConcurrentClones bounds simultaneous clones. Values <= 0 are ignored.
func WithMaxConcurrentClones(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxConcurrentClones = n
		}
	}
}

// WithSeed sets the entry a reset leaves behind.
func WithSeed(repositoryURL, fileName string) Option {
	return func(c *clientConfig) {
		c.seed = catalog.NewEntry(repositoryURL, fileName)
	}
}

// WithAPIKeys sets the tokens the HTTP API accepts.
func WithAPIKeys(keys []string) Option {
	return func(c *clientConfig) {
		c.apiKeys = append([]string(nil), keys...)
	}
}

// WithRegisterer registers the client's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// WithResetOnStart controls whether New resets a database-backed catalog to
// the seed. An in-memory catalog is always seeded.
func WithResetOnStart(reset bool) Option {
	return func(c *clientConfig) {
		c.resetOnStart = reset
	}
}

// WithLocalRepositories lets the git-backed fetcher clone local paths and
// file:// URLs. Off by default.
func WithLocalRepositories(allow bool) Option {
	return func(c *clientConfig) {
		c.localRepos = allow
	}
}

// WithFetcher replaces the git-backed fetcher.
func WithFetcher(f domainservice.Fetcher) Option {
	return func(c *clientConfig) {
		c.fetcher = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithConfig applies every client setting held by an AppConfig.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		for _, opt := range []Option{
			WithDatabaseURL(cfg.DBURL()),
			WithWorkDir(cfg.WorkDir()),
			WithGitProvider(cfg.GitProvider()),
			WithGitAuthToken(cfg.GitAuthToken()),
			WithCloneTimeout(cfg.CloneTimeout()),
			WithCloneDepth(cfg.CloneDepth()),
			WithMaxConcurrentClones(cfg.MaxConcurrentClones()),
			WithSeed(cfg.SeedURL(), cfg.SeedFileName()),
			WithAPIKeys(cfg.APIKeys()),
			WithResetOnStart(cfg.ResetOnStart()),
			WithLocalRepositories(cfg.AllowLocalRepositories()),
		} {
			opt(c)
		}
	}
}
