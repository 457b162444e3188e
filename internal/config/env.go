package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Field names map to unprefixed environment variables.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.gitsearch
	DataDir string `envconfig:"DATA_DIR"`

	// WorkDir is the parent directory for clone workspaces.
	// Env: WORK_DIR
	// Default: the system temp directory
	WorkDir string `envconfig:"WORK_DIR"`

	// DBURL is the database connection URL. Empty keeps the catalog in memory.
	// Env: DB_URL
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// BearerToken is the single token accepted by the API.
	// Env: BEARER_TOKEN
	BearerToken string `envconfig:"BEARER_TOKEN"`

	// APIKeys is a comma-separated list of additional accepted tokens.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// Git configures cloning.
	Git GitEnv `envconfig:"GIT"`

	// CloneTimeoutSeconds bounds each clone.
	// Env: CLONE_TIMEOUT_SECONDS (default: 300)
	CloneTimeoutSeconds float64 `envconfig:"CLONE_TIMEOUT_SECONDS" default:"300"`

	// CloneDepth limits clone history. Zero clones full history.
	// Env: CLONE_DEPTH (default: 1)
	CloneDepth int `envconfig:"CLONE_DEPTH" default:"1"`

	// MaxConcurrentClones bounds simultaneous clones across requests.
	// Env: MAX_CONCURRENT_CLONES (default: 4)
	MaxConcurrentClones int `envconfig:"MAX_CONCURRENT_CLONES" default:"4"`

	// RequestTimeoutSeconds bounds each HTTP request.
	// Env: REQUEST_TIMEOUT_SECONDS (default: 600)
	RequestTimeoutSeconds float64 `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"600"`

	// Seed configures the entry a reset leaves behind.
	Seed SeedEnv `envconfig:"SEED"`

	// ResetOnStart resets the catalog to the seed at startup.
	// Env: RESET_ON_START (default: true)
	ResetOnStart bool `envconfig:"RESET_ON_START" default:"true"`

	// AllowLocalRepositories accepts local paths and file:// URLs.
	// Env: ALLOW_LOCAL_REPOSITORIES (default: false)
	AllowLocalRepositories bool `envconfig:"ALLOW_LOCAL_REPOSITORIES" default:"false"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// GitEnv holds environment configuration for git.
type GitEnv struct {
	// Provider selects the git implementation (gogit or gitea).
	// Env: GIT_PROVIDER (default: gogit)
	Provider string `envconfig:"PROVIDER" default:"gogit"`

	// AuthToken authenticates HTTP(S) clones.
	// Env: GIT_AUTH_TOKEN
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// SeedEnv holds environment configuration for the seed entry.
type SeedEnv struct {
	// URL is the seed repository URL.
	// Env: SEED_URL
	URL string `envconfig:"URL"`

	// FileName is the seed file name.
	// Env: SEED_FILE_NAME
	FileName string `envconfig:"FILE_NAME"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.WorkDir != "" {
		cfg = applyOption(cfg, WithWorkDir(e.WorkDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	if keys := e.tokens(); len(keys) > 0 {
		cfg = applyOption(cfg, WithAPIKeys(keys))
	}

	if e.Git.Provider != "" {
		cfg = applyOption(cfg, WithGitProvider(e.Git.Provider))
	}
	if e.Git.AuthToken != "" {
		cfg = applyOption(cfg, WithGitAuthToken(e.Git.AuthToken))
	}

	cfg = applyOption(cfg, WithCloneTimeout(seconds(e.CloneTimeoutSeconds)))
	cfg = applyOption(cfg, WithCloneDepth(e.CloneDepth))
	cfg = applyOption(cfg, WithMaxConcurrentClones(e.MaxConcurrentClones))
	cfg = applyOption(cfg, WithRequestTimeout(seconds(e.RequestTimeoutSeconds)))

	if e.Seed.URL != "" || e.Seed.FileName != "" {
		cfg = applyOption(cfg, WithSeed(
			firstNonEmpty(e.Seed.URL, DefaultSeedURL),
			firstNonEmpty(e.Seed.FileName, DefaultSeedFileName),
		))
	}
	cfg = applyOption(cfg, WithResetOnStart(e.ResetOnStart))
	cfg = applyOption(cfg, WithLocalRepositories(e.AllowLocalRepositories))

	if origins := ParseAPIKeys(e.CORSAllowedOrigins); len(origins) > 0 {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(origins))
	}

	return cfg
}

// tokens merges BEARER_TOKEN and API_KEYS, dropping duplicates.
func (e EnvConfig) tokens() []string {
	keys := ParseAPIKeys(e.APIKeys)
	bearer := strings.TrimSpace(e.BearerToken)
	if bearer == "" {
		return keys
	}
	for _, k := range keys {
		if k == bearer {
			return keys
		}
	}
	return append([]string{bearer}, keys...)
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
