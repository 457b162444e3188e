package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "gogit", cfg.Git.Provider)
	assert.Equal(t, 300.0, cfg.CloneTimeoutSeconds)
	assert.Equal(t, 1, cfg.CloneDepth)
	assert.Equal(t, 4, cfg.MaxConcurrentClones)
	assert.True(t, cfg.ResetOnStart)
	assert.False(t, cfg.AllowLocalRepositories)
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals; keep them in sync with config.go.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	app := cfg.ToAppConfig()

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultGitProvider, cfg.Git.Provider)
	assert.Equal(t, DefaultCloneTimeout, app.CloneTimeout())
	assert.Equal(t, DefaultCloneDepth, app.CloneDepth())
	assert.Equal(t, DefaultMaxConcurrentClones, app.MaxConcurrentClones())
	assert.Equal(t, DefaultRequestTimeout, app.RequestTimeout())
	assert.Equal(t, DefaultSeedURL, app.SeedURL())
	assert.Equal(t, DefaultSeedFileName, app.SeedFileName())
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("WORK_DIR", "/scratch")
	t.Setenv("DB_URL", "sqlite:///catalog.db")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GIT_PROVIDER", "gitea")
	t.Setenv("GIT_AUTH_TOKEN", "ghp_secret")
	t.Setenv("CLONE_TIMEOUT_SECONDS", "1.5")
	t.Setenv("CLONE_DEPTH", "0")
	t.Setenv("MAX_CONCURRENT_CLONES", "2")
	t.Setenv("RESET_ON_START", "false")
	t.Setenv("ALLOW_LOCAL_REPOSITORIES", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg := env.ToAppConfig()

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "/scratch", cfg.WorkDir())
	assert.Equal(t, "sqlite:///catalog.db", cfg.DBURL())
	assert.True(t, cfg.IsPersistent())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "gitea", cfg.GitProvider())
	assert.Equal(t, "ghp_secret", cfg.GitAuthToken())
	assert.Equal(t, 1500*time.Millisecond, cfg.CloneTimeout())
	assert.Equal(t, 0, cfg.CloneDepth())
	assert.Equal(t, 2, cfg.MaxConcurrentClones())
	assert.False(t, cfg.ResetOnStart())
	assert.True(t, cfg.AllowLocalRepositories())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins())
}

func TestLoadFromEnv_Tokens(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("BEARER_TOKEN", "primary")
	t.Setenv("API_KEYS", "key1, primary ,key2")

	env, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"key1", "primary", "key2"}, env.ToAppConfig().APIKeys())

	t.Setenv("API_KEYS", "key1")
	env, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "key1"}, env.ToAppConfig().APIKeys())
}

func TestLoadFromEnv_Seed(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("SEED_URL", "https://example.com/docs.git")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg := env.ToAppConfig()

	assert.Equal(t, "https://example.com/docs.git", cfg.SeedURL())
	assert.Equal(t, DefaultSeedFileName, cfg.SeedFileName())
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PORT", "not-a-number")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, parseLogFormat("JSON"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("unknown"))
}

func TestLoadDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `DATA_DIR=/from/dotenv
LOG_LEVEL=DEBUG
BEARER_TOKEN=dotenv-token
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "/from/dotenv", os.Getenv("DATA_DIR"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "dotenv-token", os.Getenv("BEARER_TOKEN"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `DATA_DIR=/config/data
LOG_LEVEL=WARN
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/config/data", cfg.DataDir())
	assert.Equal(t, "ERROR", cfg.LogLevel())
}

func TestLoadDotEnvFromFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("KEY1=value1\nKEY2=first\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("KEY2=second\nKEY3=value3\n"), 0o644))

	clearEnvVars(t)

	require.NoError(t, LoadDotEnvFromFiles(first, filepath.Join(dir, "missing.env"), second))
	assert.Equal(t, "value1", os.Getenv("KEY1"))
	assert.Equal(t, "first", os.Getenv("KEY2"))
	assert.Equal(t, "value3", os.Getenv("KEY3"))
}

// clearEnvVars unsets all config-related environment variables and restores
// them when the test finishes.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"WORK_DIR",
		"DB_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"BEARER_TOKEN",
		"API_KEYS",
		"GIT_PROVIDER",
		"GIT_AUTH_TOKEN",
		"CLONE_TIMEOUT_SECONDS",
		"CLONE_DEPTH",
		"MAX_CONCURRENT_CLONES",
		"REQUEST_TIMEOUT_SECONDS",
		"SEED_URL",
		"SEED_FILE_NAME",
		"RESET_ON_START",
		"ALLOW_LOCAL_REPOSITORIES",
		"CORS_ALLOWED_ORIGINS",
		"KEY1",
		"KEY2",
		"KEY3",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
