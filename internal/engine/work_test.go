package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func TestTicketNumbering(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.Engine.CreateProject(env.Ctx, "a", "/repo/a")
	require.NoError(t, err)
	b, err := env.Engine.CreateProject(env.Ctx, "b", "/repo/b")
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		tk, err := env.Engine.CreateTicket(env.Ctx, a.ID, "fix", "")
		require.NoError(t, err)
		assert.Equal(t, want, tk.Number)
	}
	tk, err := env.Engine.CreateTicket(env.Ctx, b.ID, "other", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tk.Number, "counters are per project")

	n, err := env.Engine.NextCounter(env.Ctx, a.ID, "release")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = env.Engine.CreateTicket(env.Ctx, "missing", "fix", "")
	require.ErrorIs(t, err, engine.ErrNotFound)
	_, err = env.Engine.CreateTicket(env.Ctx, a.ID, "", "")
	require.ErrorIs(t, err, engine.ErrValidation)
}

func TestLinkSpecDesign(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.Engine.CreateProject(env.Ctx, "p", "/repo/p")
	require.NoError(t, err)
	other, err := env.Engine.CreateProject(env.Ctx, "o", "/repo/o")
	require.NoError(t, err)

	spec, err := env.Engine.CreateSpec(env.Ctx, p.ID, "auth")
	require.NoError(t, err)
	design, err := env.Engine.CreateDesign(env.Ctx, p.ID, "token flow", "")
	require.NoError(t, err)
	foreign, err := env.Engine.CreateDesign(env.Ctx, other.ID, "elsewhere", "")
	require.NoError(t, err)

	created, err := env.Engine.LinkSpecDesign(env.Ctx, spec.ID, design.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = env.Engine.LinkSpecDesign(env.Ctx, spec.ID, design.ID)
	require.NoError(t, err)
	assert.False(t, created)

	links, err := env.Engine.ListSpecDesigns(env.Ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, design.ID, links[0].DesignID)

	_, err = env.Engine.LinkSpecDesign(env.Ctx, spec.ID, foreign.ID)
	require.ErrorIs(t, err, engine.ErrValidation)
	_, err = env.Engine.LinkSpecDesign(env.Ctx, spec.ID, "missing")
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.Engine.CreateProject(env.Ctx, "p", "/repo/p")
	require.NoError(t, err)
	other, err := env.Engine.CreateProject(env.Ctx, "o", "/repo/o")
	require.NoError(t, err)
	design, err := env.Engine.CreateDesign(env.Ctx, p.ID, "d", "")
	require.NoError(t, err)
	ticket, err := env.Engine.CreateTicket(env.Ctx, p.ID, "t", "")
	require.NoError(t, err)

	in := engine.CommentInput{TargetType: domain.TargetDesign, TargetID: design.ID, AuthorType: domain.AuthorHuman, AuthorName: "ana", Body: "looks good"}
	first, err := env.Engine.AddComment(env.Ctx, p.ID, in)
	require.NoError(t, err)
	env.Clock.Advance(1)
	in.Body = "one more thing"
	in.AuthorType = domain.AuthorAgent
	_, err = env.Engine.AddComment(env.Ctx, p.ID, in)
	require.NoError(t, err)

	got, err := env.Engine.ListComments(env.Ctx, domain.TargetDesign, design.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)

	_, err = env.Engine.AddComment(env.Ctx, p.ID, engine.CommentInput{TargetType: domain.TargetTicket, TargetID: ticket.ID, AuthorType: domain.AuthorHuman, AuthorName: "ana", Body: "ok"})
	require.NoError(t, err)

	cases := map[string]struct {
		project string
		in      engine.CommentInput
		want    error
	}{
		"unknown target type": {p.ID, engine.CommentInput{TargetType: "spec", TargetID: design.ID, AuthorType: domain.AuthorHuman, AuthorName: "a", Body: "x"}, engine.ErrValidation},
		"unknown author type": {p.ID, engine.CommentInput{TargetType: domain.TargetDesign, TargetID: design.ID, AuthorType: "bot", AuthorName: "a", Body: "x"}, engine.ErrValidation},
		"empty body":          {p.ID, engine.CommentInput{TargetType: domain.TargetDesign, TargetID: design.ID, AuthorType: domain.AuthorHuman, AuthorName: "a"}, engine.ErrValidation},
		"missing target":      {p.ID, engine.CommentInput{TargetType: domain.TargetTicket, TargetID: "nope", AuthorType: domain.AuthorHuman, AuthorName: "a", Body: "x"}, engine.ErrNotFound},
		"other project":       {other.ID, engine.CommentInput{TargetType: domain.TargetDesign, TargetID: design.ID, AuthorType: domain.AuthorHuman, AuthorName: "a", Body: "x"}, engine.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Engine.AddComment(env.Ctx, tc.project, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err = env.Engine.ListComments(env.Ctx, "spec", design.ID)
	require.ErrorIs(t, err, engine.ErrValidation)
}
