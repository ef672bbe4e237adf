package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func TestDeleteProjectCascade(t *testing.T) {
	env := newTestEnv(t)
	p, o := env.seedOrchestration(t, "/repo/app", "checkout")
	_, keep := env.seedOrchestration(t, "/repo/keep", "billing")
	ctx := env.Ctx
	e := env.Engine

	_, err := e.UpsertPhase(ctx, o.ID, "1", domain.PhaseExecuting, engine.PhasePatch{})
	require.NoError(t, err)
	_, err = e.SeedExecutionTasks(ctx, o.ID, "1", []domain.TaskSeed{{TaskNumber: 1, Subject: "a"}, {TaskNumber: 2, Subject: "b", DependsOn: []int{1}}})
	require.NoError(t, err)
	_, err = e.SubmitAction(ctx, "node", o.ID, "approve", json.RawMessage(`{}`))
	require.NoError(t, err)
	rid, err := e.CreateReview(ctx, o.ID, ptr("1"), "reviewer")
	require.NoError(t, err)
	_, err = e.StartCheck(ctx, rid, o.ID, "lint", domain.CheckCLI, ptr("make lint"))
	require.NoError(t, err)
	_, err = e.UpsertGate(ctx, o.ID, domain.GatePlan, domain.GateApproved, "lead", ptr("lead"), "ok")
	require.NoError(t, err)
	_, err = e.RecordEvent(ctx, o.ID, engine.EventInput{EventType: "note", Source: "cli", Summary: "hi", RecordedAt: "2024-01-01T00:00:01Z"})
	require.NoError(t, err)
	team, err := e.CreateTeam(ctx, o.ID, "core")
	require.NoError(t, err)
	_, err = e.AddTeamMember(ctx, team.ID, engine.MemberInput{Name: "coder", CLI: "claude", PaneID: "%1"})
	require.NoError(t, err)
	_, err = e.RecordCommit(ctx, o.ID, engine.CommitInput{SHA: "abc123", Message: "wip"})
	require.NoError(t, err)
	_, err = e.SavePlan(ctx, o.ID, ptr("1"), "plans/1.md", "# plan")
	require.NoError(t, err)
	_, err = e.UpsertSupervisorState(ctx, "node", "checkout", json.RawMessage(`{"step":1}`), "")
	require.NoError(t, err)
	_, err = e.UpsertSupervisorState(ctx, "node", "billing", json.RawMessage(`{"step":2}`), "")
	require.NoError(t, err)

	d, err := e.CreateDesign(ctx, p.ID, "d", "")
	require.NoError(t, err)
	tk, err := e.CreateTicket(ctx, p.ID, "t", "")
	require.NoError(t, err)
	s, err := e.CreateSpec(ctx, p.ID, "s")
	require.NoError(t, err)
	_, err = e.LinkSpecDesign(ctx, s.ID, d.ID)
	require.NoError(t, err)
	for _, target := range []struct {
		kind domain.TargetKind
		id   string
	}{{domain.TargetDesign, d.ID}, {domain.TargetTicket, tk.ID}} {
		_, err = e.AddComment(ctx, p.ID, engine.CommentInput{TargetType: target.kind, TargetID: target.id, AuthorType: domain.AuthorHuman, AuthorName: "a", Body: "x"})
		require.NoError(t, err)
	}

	before, err := e.Repo.CountOrchestrationRows(ctx, nil, o.ID)
	require.NoError(t, err)
	require.Positive(t, before)

	res, err := e.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.DeleteResult{
		Deleted:               true,
		DeletedProjectID:      p.ID,
		DeletedOrchestrations: 1,
		DeletedDesigns:        1,
		DeletedTickets:        1,
		DeletedSpecs:          1,
		DeletedComments:       2,
	}, res)

	left, err := e.Repo.CountOrchestrationRows(ctx, nil, o.ID)
	require.NoError(t, err)
	assert.Zero(t, left)
	_, err = e.GetProject(ctx, p.ID)
	require.ErrorIs(t, err, engine.ErrNotFound)
	_, err = e.GetOrchestration(ctx, o.ID)
	require.ErrorIs(t, err, engine.ErrNotFound)
	_, err = e.GetSupervisorState(ctx, "node", "checkout")
	require.ErrorIs(t, err, engine.ErrNotFound)
	links, err := e.ListSpecDesigns(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	// unrelated project is untouched
	_, err = e.GetOrchestration(ctx, keep.ID)
	require.NoError(t, err)
	_, err = e.GetSupervisorState(ctx, "node", "billing")
	require.NoError(t, err)

	again, err := e.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, again.Deleted)
}
