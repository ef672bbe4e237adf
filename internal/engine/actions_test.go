package engine_test

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func TestClaimIsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	id, err := env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "run_tests", json.RawMessage(`{"suite":"unit"}`))
	require.NoError(t, err)

	const claimers = 32
	var wins, lost atomic.Int32
	var g errgroup.Group
	for i := 0; i < claimers; i++ {
		g.Go(func() error {
			res, err := env.Engine.ClaimAction(env.Ctx, id)
			if err != nil {
				return err
			}
			if res.Success {
				wins.Add(1)
			} else if res.Reason == domain.ClaimAlreadyClaimed {
				lost.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, claimers-1, lost.Load())

	a, err := env.Engine.GetAction(env.Ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionClaimed, a.Status)
	require.NotNil(t, a.ClaimedAt)
}

func TestClaimUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.ClaimAction(env.Ctx, "missing")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.ClaimNotFound, res.Reason)
}

func TestActionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	id, err := env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "deploy", nil)
	require.NoError(t, err)
	env.Clock.Advance(time.Second)
	other, err := env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "lint", json.RawMessage(`{}`))
	require.NoError(t, err)
	_, err = env.Engine.SubmitAction(env.Ctx, "node-2", o.ID, "lint", nil)
	require.NoError(t, err)

	pending, err := env.Engine.PendingActions(env.Ctx, "node-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, other, pending[1].ID)
	assert.JSONEq(t, `{}`, string(pending[0].Payload))

	res, err := env.Engine.ClaimAction(env.Ctx, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	pending, err = env.Engine.PendingActions(env.Ctx, "node-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other, pending[0].ID)

	require.NoError(t, env.Engine.CompleteAction(env.Ctx, id, json.RawMessage(`{"ok":true}`), true))
	a, err := env.Engine.GetAction(env.Ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCompleted, a.Status)
	assert.JSONEq(t, `{"ok":true}`, string(a.Result))
	require.NotNil(t, a.CompletedAt)

	res, err = env.Engine.ClaimAction(env.Ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResult{Reason: domain.ClaimAlreadyClaimed}, res)

	require.NoError(t, env.Engine.CompleteAction(env.Ctx, other, nil, false))
	a, err = env.Engine.GetAction(env.Ctx, other)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionFailed, a.Status)
}

func TestSubmitActionValidation(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	_, err := env.Engine.SubmitAction(env.Ctx, "node-1", "nope", "deploy", nil)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "deploy", json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, engine.ErrValidation)

	err = env.Engine.CompleteAction(env.Ctx, "nope", nil, true)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRequeueStaleClaims(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	stale, err := env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "deploy", nil)
	require.NoError(t, err)
	res, err := env.Engine.ClaimAction(env.Ctx, stale)
	require.NoError(t, err)
	require.True(t, res.Success)

	env.Clock.Advance(20 * time.Minute)
	fresh, err := env.Engine.SubmitAction(env.Ctx, "node-1", o.ID, "deploy", nil)
	require.NoError(t, err)
	res, err = env.Engine.ClaimAction(env.Ctx, fresh)
	require.NoError(t, err)
	require.True(t, res.Success)

	n, err := env.Engine.RequeueStaleClaims(env.Ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	pending, err := env.Engine.PendingActions(env.Ctx, "node-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stale, pending[0].ID)
	assert.Nil(t, pending[0].ClaimedAt)

	_, err = env.Engine.RequeueStaleClaims(env.Ctx, 0)
	assert.ErrorIs(t, err, engine.ErrValidation)
}
