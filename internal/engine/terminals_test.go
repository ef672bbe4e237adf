package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type fakeLauncher struct {
	launched []string
	killed   []string
	fail     bool
}

func (f *fakeLauncher) Launch(_ context.Context, name, _ string) (string, error) {
	if f.fail {
		return "", errors.New("tmux not running")
	}
	f.launched = append(f.launched, name)
	return "%" + name, nil
}

func (f *fakeLauncher) Kill(_ context.Context, name string) error {
	f.killed = append(f.killed, name)
	return nil
}

func TestTerminalTargets(t *testing.T) {
	env := newTestEnv(t)
	_, live := env.seedOrchestration(t, "/repo/a", "login")
	_, done := env.seedOrchestration(t, "/repo/b", "signup")

	liveTeam, err := env.Engine.CreateTeam(env.Ctx, live.ID, "core")
	require.NoError(t, err)
	doneTeam, err := env.Engine.CreateTeam(env.Ctx, done.ID, "core")
	require.NoError(t, err)

	coder, err := env.Engine.AddTeamMember(env.Ctx, liveTeam.ID, engine.MemberInput{Name: "coder", Role: "implementer", CLI: "claude", SessionName: "login", PaneID: "%1"})
	require.NoError(t, err)
	_, err = env.Engine.AddTeamMember(env.Ctx, liveTeam.ID, engine.MemberInput{Name: "idle", Role: "reviewer", CLI: "codex"})
	require.NoError(t, err)
	_, err = env.Engine.AddTeamMember(env.Ctx, doneTeam.ID, engine.MemberInput{Name: "old", Role: "implementer", CLI: "claude", SessionName: "signup", PaneID: "%2"})
	require.NoError(t, err)
	_, err = env.Engine.SetOrchestrationStatus(env.Ctx, done.ID, domain.OrchestrationComplete)
	require.NoError(t, err)

	withCtx, err := env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{
		Label: "debug", SessionName: "scratch", PaneID: "%7", CLI: "bash",
		ContextType: ptr("ticket"), ContextID: ptr("t-1"), ContextSummary: ptr("flaky login"),
	})
	require.NoError(t, err)
	partial, err := env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{
		SessionName: "scratch2", PaneID: "%8", CLI: "bash", ContextType: ptr("ticket"),
	})
	require.NoError(t, err)
	closed, err := env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{SessionName: "gone", PaneID: "%9", CLI: "bash"})
	require.NoError(t, err)
	require.NoError(t, env.Engine.CloseTerminalSession(env.Ctx, closed.ID))

	targets, err := env.Engine.ListTerminalTargets(env.Ctx)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, coder.ID, targets[0].ID)
	assert.Equal(t, domain.TargetAgent, targets[0].Type)
	assert.Equal(t, "%1", targets[0].PaneID)
	assert.Equal(t, "login / coder", targets[0].Label)

	assert.Equal(t, withCtx.ID, targets[1].ID)
	assert.Equal(t, domain.TargetAdhoc, targets[1].Type)
	require.NotNil(t, targets[1].Context)
	assert.Equal(t, "flaky login", targets[1].Context.Summary)

	assert.Equal(t, partial.ID, targets[2].ID)
	assert.Nil(t, targets[2].Context)
	assert.Equal(t, "scratch2", targets[2].Label)
}

func TestTerminalSessionLauncher(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{SessionName: "s", CLI: "bash"})
	require.ErrorIs(t, err, engine.ErrValidation)

	l := &fakeLauncher{}
	env.Engine.Launcher = l
	s, err := env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{SessionName: "work", CLI: "bash", StartDir: "/tmp"})
	require.NoError(t, err)
	assert.Equal(t, "%work", s.PaneID)
	assert.Equal(t, []string{"work"}, l.launched)

	require.NoError(t, env.Engine.CloseTerminalSession(env.Ctx, s.ID))
	assert.Equal(t, []string{"work"}, l.killed)
	require.ErrorIs(t, env.Engine.CloseTerminalSession(env.Ctx, "missing"), engine.ErrNotFound)

	l.fail = true
	_, err = env.Engine.OpenTerminalSession(env.Ctx, engine.SessionInput{SessionName: "broken", CLI: "bash"})
	require.Error(t, err)
	targets, err := env.Engine.ListTerminalTargets(env.Ctx)
	require.NoError(t, err)
	assert.Empty(t, targets)
}
