package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/engine"
)

func TestSupervisorStateIsPerFeature(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.Engine.UpsertSupervisorState(env.Ctx, "node-a", "login", json.RawMessage(`{"step":1}`), "2024-01-01T00:00:01Z")
	require.NoError(t, err)
	id2, err := env.Engine.UpsertSupervisorState(env.Ctx, "node-b", "login", json.RawMessage(`{"step":2}`), "2024-01-01T00:00:02Z")
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	// nodeId does not scope the lookup
	s, err := env.Engine.GetSupervisorState(env.Ctx, "node-a", "login")
	require.NoError(t, err)
	assert.Equal(t, "node-b", s.NodeID)
	assert.JSONEq(t, `{"step":2}`, string(s.State))
	assert.Equal(t, "2024-01-01T00:00:02.000Z", s.UpdatedAt)

	_, err = env.Engine.GetSupervisorState(env.Ctx, "node-a", "signup")
	require.ErrorIs(t, err, engine.ErrNotFound)

	_, err = env.Engine.UpsertSupervisorState(env.Ctx, "node-a", "login", json.RawMessage(`nope`), "")
	require.ErrorIs(t, err, engine.ErrValidation)
	_, err = env.Engine.UpsertSupervisorState(env.Ctx, "node-a", "login", json.RawMessage(`{}`), "later")
	require.ErrorIs(t, err, engine.ErrValidation)
}

func TestSupervisorLatestWinsOnDuplicateRows(t *testing.T) {
	env := newTestEnv(t)
	// rows written outside the upsert path, e.g. by an older release
	_, err := env.Engine.DB.Exec(`INSERT INTO supervisor_states(id,node_id,feature_name,state_json,updated_at) VALUES
('s1','n','login','{"v":1}','2024-01-01T00:00:05.000Z'),
('s2','n','login','{"v":2}','2024-01-01T00:00:09.000Z'),
('s3','n','login','{"v":3}','2024-01-01T00:00:09.000Z')`)
	require.NoError(t, err)

	s, err := env.Engine.GetSupervisorState(env.Ctx, "", "login")
	require.NoError(t, err)
	assert.Equal(t, "s3", s.ID)

	id, err := env.Engine.UpsertSupervisorState(env.Ctx, "n", "login", json.RawMessage(`{"v":4}`), "2024-01-01T00:00:10Z")
	require.NoError(t, err)
	assert.Equal(t, "s3", id)
}
