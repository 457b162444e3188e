// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8080
	DefaultLogLevel            = "INFO"
	DefaultGitProvider         = "gogit"
	DefaultCloneTimeout        = 300 * time.Second
	DefaultCloneDepth          = 1
	DefaultMaxConcurrentClones = 4
	DefaultRequestTimeout      = 10 * time.Minute
	DefaultSeedURL             = "https://github.com/junegunn/fzf/blob/master/doc/fzf.txt"
	DefaultSeedFileName        = "fzf.txt"
	DefaultSearchLimit         = 10
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the main application configuration.
type AppConfig struct {
	host                string
	port                int
	dataDir             string
	workDir             string
	dbURL               string
	logLevel            string
	logFormat           LogFormat
	apiKeys             []string
	gitProvider         string
	gitAuthToken        string
	cloneTimeout        time.Duration
	cloneDepth          int
	maxConcurrentClones int
	requestTimeout      time.Duration
	seedURL             string
	seedFileName        string
	resetOnStart        bool
	localRepos          bool
	corsAllowedOrigins  []string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitsearch"
	}
	return filepath.Join(home, ".gitsearch")
}

// NewAppConfig creates a new AppConfig with defaults. The catalog is kept in
// memory unless a database URL is configured.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:                DefaultHost,
		port:                DefaultPort,
		dataDir:             DefaultDataDir(),
		logLevel:            DefaultLogLevel,
		logFormat:           LogFormatPretty,
		apiKeys:             []string{},
		gitProvider:         DefaultGitProvider,
		cloneTimeout:        DefaultCloneTimeout,
		cloneDepth:          DefaultCloneDepth,
		maxConcurrentClones: DefaultMaxConcurrentClones,
		requestTimeout:      DefaultRequestTimeout,
		seedURL:             DefaultSeedURL,
		seedFileName:        DefaultSeedFileName,
		resetOnStart:        true,
		corsAllowedOrigins:  []string{"*"},
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// WorkDir returns the parent directory for clone workspaces. Empty means the
// system temp directory.
func (c AppConfig) WorkDir() string { return c.workDir }

// DBURL returns the database connection URL. Empty means in-memory.
func (c AppConfig) DBURL() string { return c.dbURL }

// IsPersistent reports whether the catalog is stored in a database.
func (c AppConfig) IsPersistent() bool { return c.dbURL != "" }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the configured tokens accepted by the API.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// GitProvider returns the git implementation name.
func (c AppConfig) GitProvider() string { return c.gitProvider }

// GitAuthToken returns the token used for HTTP(S) clones.
func (c AppConfig) GitAuthToken() string { return c.gitAuthToken }

// CloneTimeout returns the per-clone deadline.
func (c AppConfig) CloneTimeout() time.Duration { return c.cloneTimeout }

// CloneDepth returns the clone history depth. Zero means full history.
func (c AppConfig) CloneDepth() int { return c.cloneDepth }

// MaxConcurrentClones returns the bound on simultaneous clones.
func (c AppConfig) MaxConcurrentClones() int { return c.maxConcurrentClones }

// RequestTimeout returns the HTTP request timeout.
func (c AppConfig) RequestTimeout() time.Duration { return c.requestTimeout }

// SeedURL returns the repository URL of the seed entry.
func (c AppConfig) SeedURL() string { return c.seedURL }

// SeedFileName returns the file name of the seed entry.
func (c AppConfig) SeedFileName() string { return c.seedFileName }

// ResetOnStart reports whether the catalog is reset to the seed at startup.
func (c AppConfig) ResetOnStart() bool { return c.resetOnStart }

// AllowLocalRepositories reports whether local paths and file:// URLs may be
// cloned.
func (c AppConfig) AllowLocalRepositories() bool { return c.localRepos }

// CORSAllowedOrigins returns the origins allowed by the CORS middleware.
func (c AppConfig) CORSAllowedOrigins() []string {
	origins := make([]string, len(c.corsAllowedOrigins))
	copy(origins, c.corsAllowedOrigins)
	return origins
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.dataDir = dir }
}

// WithWorkDir sets the parent directory for clone workspaces.
func WithWorkDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.workDir = dir }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the accepted tokens.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithGitProvider sets the git implementation name.
func WithGitProvider(provider string) AppConfigOption {
	return func(c *AppConfig) { c.gitProvider = provider }
}

// WithGitAuthToken sets the token used for HTTP(S) clones.
func WithGitAuthToken(token string) AppConfigOption {
	return func(c *AppConfig) { c.gitAuthToken = token }
}

// WithCloneTimeout sets the per-clone deadline.
func WithCloneTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.cloneTimeout = d
		}
	}
}

// WithCloneDepth sets the clone history depth.
func WithCloneDepth(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n >= 0 {
			c.cloneDepth = n
		}
	}
}

// WithMaxConcurrentClones sets the bound on simultaneous clones.
func WithMaxConcurrentClones(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.maxConcurrentClones = n
		}
	}
}

// WithRequestTimeout sets the HTTP request timeout.
func WithRequestTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithSeed sets the seed entry.
func WithSeed(repositoryURL, fileName string) AppConfigOption {
	return func(c *AppConfig) {
		c.seedURL = repositoryURL
		c.seedFileName = fileName
	}
}

// WithResetOnStart sets whether the catalog is reset at startup.
func WithResetOnStart(reset bool) AppConfigOption {
	return func(c *AppConfig) { c.resetOnStart = reset }
}

// WithLocalRepositories sets whether local paths and file:// URLs are accepted.
func WithLocalRepositories(allow bool) AppConfigOption {
	return func(c *AppConfig) { c.localRepos = allow }
}

// WithCORSAllowedOrigins sets the origins allowed by the CORS middleware.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsAllowedOrigins = make([]string, len(origins))
		copy(c.corsAllowedOrigins, origins)
	}
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are shown as counts or masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("data_dir", c.dataDir),
		slog.String("work_dir", c.workDirOrTemp()),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.String("git_provider", c.gitProvider),
		slog.Bool("git_auth_token", c.gitAuthToken != ""),
		slog.Duration("clone_timeout", c.cloneTimeout),
		slog.Int("clone_depth", c.cloneDepth),
		slog.Int("max_concurrent_clones", c.maxConcurrentClones),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.Bool("reset_on_start", c.resetOnStart),
		slog.Bool("allow_local_repositories", c.localRepos),
	}
}

func (c AppConfig) workDirOrTemp() string {
	if c.workDir == "" {
		return os.TempDir()
	}
	return c.workDir
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(memory)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	u, err := url.Parse(c.dbURL)
	if err != nil || u.Host == "" {
		return "postgres://***@***"
	}
	return u.Scheme + "://***@" + u.Host + u.Path
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
