package engine_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/engine"
)

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.Engine.CreateProject(env.Ctx, "app", "/repo/app/")
	require.NoError(t, err)
	assert.Equal(t, "/repo/app", p.RepoPath)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", p.CreatedAt)

	_, err = env.Engine.CreateProject(env.Ctx, "again", "/repo/app")
	require.ErrorIs(t, err, engine.ErrConflict)
	_, err = env.Engine.CreateProject(env.Ctx, "", "/repo/x")
	require.ErrorIs(t, err, engine.ErrValidation)

	got, err := env.Engine.GetProject(env.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	_, err = env.Engine.GetProject(env.Ctx, "missing")
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestFindOrCreateByRepoPathConcurrent(t *testing.T) {
	env := newTestEnv(t)
	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := env.Engine.FindOrCreateByRepoPath(env.Ctx, "", "/repo/shared")
			if assert.NoError(t, err) {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	all, err := env.Engine.ListProjects(env.Ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "shared", all[0].Name)
}
