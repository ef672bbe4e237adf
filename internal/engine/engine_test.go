package engine_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"foreman/internal/config"
	"foreman/internal/db"
	"foreman/internal/domain"
	"foreman/internal/engine"
	"foreman/internal/migrate"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	Engine engine.Engine
	Clock  *clock
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err, "open db")
	t.Cleanup(func() { conn.Close() })
	ctx := context.Background()
	_, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err, "migrate")

	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	eng := engine.New(conn, config.Default())
	eng.Now = clk.Now
	eng.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return testEnv{Engine: eng, Clock: clk, Ctx: ctx}
}

// seedOrchestration creates a project and one orchestration under it.
func (env testEnv) seedOrchestration(t *testing.T, repoPath, feature string) (domain.Project, domain.Orchestration) {
	t.Helper()
	p, err := env.Engine.CreateProject(env.Ctx, "proj", repoPath)
	require.NoError(t, err)
	o, err := env.Engine.CreateOrchestration(env.Ctx, p.ID, feature)
	require.NoError(t, err)
	return p, o
}

func ptr[T any](v T) *T { return &v }
