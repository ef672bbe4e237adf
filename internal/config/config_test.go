package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Timeline.PageSize)
	assert.Equal(t, 15*time.Minute, cfg.Actions.ClaimTTL)
	assert.Equal(t, "/v1", cfg.Server.BasePath)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "none", cfg.Terminals.Launcher)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("timeline:\n  page_size: 25\nlog:\n  format: json\n"), 0o644))
	t.Setenv("FOREMAN_SERVER_ADDR", "0.0.0.0:9999")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Timeline.PageSize)
	assert.Equal(t, 1000, cfg.Timeline.MaxPageSize)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Addr)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestFromYAMLValidation(t *testing.T) {
	_, err := FromYAML([]byte("terminals:\n  launcher: screen\n"))
	require.ErrorContains(t, err, "terminals.launcher")

	_, err = FromYAML([]byte("timeline:\n  page_size: 500\n  max_page_size: 10\n"))
	require.ErrorContains(t, err, "max_page_size")

	cfg, err := FromYAML([]byte("actions:\n  claim_ttl: 90s\n"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Actions.ClaimTTL)
}
