package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func TestEventsOrderedAndPaged(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	// recorded out of order on purpose
	stamps := []string{
		"2024-01-01T00:00:03Z",
		"2024-01-01T00:00:01Z",
		"2024-01-01T00:00:05Z",
		"2024-01-01T00:00:02Z",
		"2024-01-01T00:00:04Z",
	}
	for _, ts := range stamps {
		_, err := env.Engine.RecordEvent(env.Ctx, o.ID, engine.EventInput{EventType: "note", Source: "agent", Summary: ts, RecordedAt: ts})
		require.NoError(t, err)
	}

	all, err := env.Engine.ListEvents(env.Ctx, o.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].RecordedAt, all[i].RecordedAt)
	}

	page, err := env.Engine.ListEvents(env.Ctx, o.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	next, err := env.Engine.ListEvents(env.Ctx, o.ID, page[1].RecordedAt, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, "2024-01-01T00:00:03.000Z", next[0].RecordedAt)

	after, err := env.Engine.ListEvents(env.Ctx, o.ID, "2024-01-01T00:00:04Z", 0)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "2024-01-01T00:00:05.000Z", after[0].RecordedAt)

	_, err = env.Engine.RecordEvent(env.Ctx, o.ID, engine.EventInput{EventType: "note", Source: "agent", RecordedAt: "soon"})
	require.ErrorIs(t, err, engine.ErrValidation)
	_, err = env.Engine.RecordEvent(env.Ctx, "missing", engine.EventInput{EventType: "note", Source: "agent", RecordedAt: stamps[0]})
	require.ErrorIs(t, err, engine.ErrNotFound)
	_, err = env.Engine.ListEvents(env.Ctx, o.ID, "whenever", 0)
	require.ErrorIs(t, err, engine.ErrValidation)
}

func TestSubMillisecondTimestampsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	_, err := env.Engine.RecordEvent(env.Ctx, o.ID, engine.EventInput{EventType: "note", Source: "agent", RecordedAt: "2024-01-01T00:00:00.0009Z"})
	require.ErrorIs(t, err, engine.ErrValidation)
	_, err = env.Engine.ListEvents(env.Ctx, o.ID, "2024-01-01T00:00:00.0001Z", 0)
	require.ErrorIs(t, err, engine.ErrValidation)

	_, err = env.Engine.RecordEvent(env.Ctx, o.ID, engine.EventInput{EventType: "note", Source: "agent", RecordedAt: "2024-01-01T00:00:00.001Z"})
	require.NoError(t, err)
	got, err := env.Engine.ListEvents(env.Ctx, o.ID, "2024-01-01T00:00:00.000Z", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01T00:00:00.001Z", got[0].RecordedAt)
}

func TestEventsDefaultPageSize(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tx, err := env.Engine.DB.Begin()
	require.NoError(t, err)
	for i := 0; i < 120; i++ {
		_, err := tx.Exec(`INSERT INTO orchestration_events(id,orchestration_id,event_type,source,summary,recorded_at) VALUES (?,?,?,?,?,?)`,
			fmt.Sprintf("ev-%d", i), o.ID, "tick", "clock", "", domain.FormatTime(base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	evs, err := env.Engine.ListEvents(env.Ctx, o.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, evs, 100)
}

func TestTimelineMergesSources(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", []domain.TaskSeed{{TaskNumber: 1, Subject: "only"}})
	require.NoError(t, err)

	env.Clock.Advance(time.Second)
	_, err = env.Engine.RecordEvent(env.Ctx, o.ID, engine.EventInput{EventType: "phase_started", Source: "supervisor", Summary: "phase 1", RecordedAt: domain.FormatTime(env.Clock.Now())})
	require.NoError(t, err)

	env.Clock.Advance(time.Second)
	rid, err := env.Engine.CreateReview(env.Ctx, o.ID, nil, "bot")
	require.NoError(t, err)
	_, err = env.Engine.StartCheck(env.Ctx, rid, o.ID, "lint", domain.CheckCLI, nil)
	require.NoError(t, err)
	env.Clock.Advance(time.Second)
	_, err = env.Engine.CompleteCheck(env.Ctx, rid, "lint", domain.CheckPassed, nil, nil)
	require.NoError(t, err)

	env.Clock.Advance(time.Second)
	_, err = env.Engine.UpsertGate(env.Ctx, o.ID, domain.GateReview, domain.GateApproved, "alice", nil, "")
	require.NoError(t, err)

	entries, err := env.Engine.Timeline(env.Ctx, o.ID, "", 0)
	require.NoError(t, err)
	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"task", "event", "check", "gate"}, kinds)

	tail, err := env.Engine.Timeline(env.Ctx, o.ID, entries[1].At, 0)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "check", tail[0].Kind)
}
