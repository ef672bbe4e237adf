package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/config"
)

func TestOpenCreatesWorkspaceDatabase(t *testing.T) {
	ws := t.TempDir()
	ctx := context.Background()
	rt, err := Open(ctx, Options{Workspace: ws})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close(ctx) })

	_, err = os.Stat(filepath.Join(ws, ".foreman", "foreman.db"))
	require.NoError(t, err)

	p, err := rt.Engine.CreateProject(ctx, "demo", "/repo/demo")
	require.NoError(t, err)
	got, err := rt.Engine.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Nil(t, rt.Engine.Launcher)
}

func TestNewLoggerHonoursLevelAndFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	var buf bytes.Buffer
	log := NewLogger(cfg, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
