package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/gitsearch/internal/config"
)

func sampleReport() indexReport {
	return indexReport{
		BatchID:    "batch-1",
		TotalAdded: 1,
		Outcomes: []indexOutcome{
			{URL: "https://example.com/a.git", Added: 1},
			{URL: "https://example.com/b.git", Kind: "clone", Error: "clone https://example.com/b.git: not found"},
		},
		Entries: []indexEntry{
			{Repository: "https://example.com/a.git", File: "main.go"},
		},
	}
}

func TestRenderReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, outputJSON, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, `"total_added": 1`)
	assert.Contains(t, out, `"kind": "clone"`)
	assert.Contains(t, out, `"file": "main.go"`)
	assert.NotContains(t, out, `"error": ""`)
}

func TestRenderReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, outputYAML, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "total_added: 1\n")
	assert.Contains(t, out, "batch_id: batch-1\n")
	assert.Contains(t, out, "  - repository: https://example.com/a.git\n    file: main.go\n")
}

func TestIndexCmd_RejectsUnknownOutput(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"index", "--output", "xml", "https://example.com/a.git"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
}

func TestIndexCmd_RequiresURL(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"index"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.Execute())
}

func TestIndexCmd_DefaultFilter(t *testing.T) {
	flag := indexCmd().Flags().Lookup("filter")
	require.NotNil(t, flag)
	assert.Equal(t, "*/*", flag.DefValue)
}

func TestLoadConfig_EnvFilesInOrder(t *testing.T) {
	for _, key := range []string{"DATA_DIR", "LOG_LEVEL", "PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("DATA_DIR=/first\nLOG_LEVEL=DEBUG\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("DATA_DIR=/second\nPORT=9191\n"), 0o644))

	cfg, err := loadConfig(first, filepath.Join(dir, "missing.env"), second)
	require.NoError(t, err)
	assert.Equal(t, "/first", cfg.DataDir())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, 9191, cfg.Port())
}

func TestRunServe_RequiresToken(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "")
	t.Setenv("API_KEYS", "")

	err := runServe(context.Background(), nil, "", 0)
	assert.ErrorIs(t, err, errNoToken)
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := config.NewAppConfig()

	got := applyServeOverrides(cfg, "127.0.0.1", 9090)
	assert.Equal(t, "127.0.0.1", got.Host())
	assert.Equal(t, 9090, got.Port())

	unchanged := applyServeOverrides(cfg, "", 0)
	assert.Equal(t, cfg.Host(), unchanged.Host())
	assert.Equal(t, cfg.Port(), unchanged.Port())
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "gitsearch version dev")
}
