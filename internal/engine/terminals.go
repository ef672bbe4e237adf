package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

// SessionLauncher is the creation endpoint of the external terminal daemon.
type SessionLauncher interface {
	// Launch starts a session and returns the pane it opened.
	Launch(ctx context.Context, sessionName, startDir string) (paneID string, err error)
	Kill(ctx context.Context, sessionName string) error
}

func (e Engine) CreateTeam(ctx context.Context, orchestrationID, name string) (t domain.Team, err error) {
	ctx, done := e.observe(ctx, "create_team")
	defer func() { done(err) }()

	if err := required("team name", name); err != nil {
		return t, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return t, err
	}
	t = domain.Team{ID: uuid.New().String(), OrchestrationID: orchestrationID, Name: name, CreatedAt: e.stamp()}
	if err := e.Repo.InsertTeam(ctx, tx, t); err != nil {
		return domain.Team{}, err
	}
	return t, tx.Commit()
}

type MemberInput struct {
	Name        string
	Role        string
	CLI         string
	Model       *string
	SessionName string
	PaneID      string
}

func (e Engine) AddTeamMember(ctx context.Context, teamID string, in MemberInput) (m domain.TeamMember, err error) {
	ctx, done := e.observe(ctx, "add_team_member")
	defer func() { done(err) }()

	if err := required("member name", in.Name); err != nil {
		return m, err
	}
	if err := required("cli", in.CLI); err != nil {
		return m, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return m, err
	}
	defer tx.Rollback()
	team, err := e.Repo.GetTeam(ctx, tx, teamID)
	if err != nil {
		return m, wrapNotFound(err, "team", teamID)
	}
	m = domain.TeamMember{
		ID:              uuid.New().String(),
		TeamID:          team.ID,
		OrchestrationID: team.OrchestrationID,
		Name:            in.Name,
		Role:            in.Role,
		CLI:             in.CLI,
		Model:           in.Model,
		SessionName:     in.SessionName,
		PaneID:          in.PaneID,
		CreatedAt:       e.stamp(),
	}
	if err := e.Repo.InsertTeamMember(ctx, tx, m); err != nil {
		return domain.TeamMember{}, err
	}
	return m, tx.Commit()
}

type SessionInput struct {
	Label          string
	SessionName    string
	PaneID         string
	CLI            string
	StartDir       string
	ContextType    *string
	ContextID      *string
	ContextSummary *string
}

// OpenTerminalSession records an ad-hoc session. With a launcher configured
// and no pane given, the daemon creates the session first.
func (e Engine) OpenTerminalSession(ctx context.Context, in SessionInput) (s domain.TerminalSession, err error) {
	ctx, done := e.observe(ctx, "open_terminal_session", attribute.String("session", in.SessionName))
	defer func() { done(err) }()

	if err := required("session name", in.SessionName); err != nil {
		return s, err
	}
	if err := required("cli", in.CLI); err != nil {
		return s, err
	}
	if in.Label == "" {
		in.Label = in.SessionName
	}
	if in.PaneID == "" {
		if e.Launcher == nil {
			return s, invalid("pane id is required when no terminal launcher is configured")
		}
		pane, err := e.Launcher.Launch(ctx, in.SessionName, in.StartDir)
		if err != nil {
			return s, fmt.Errorf("launch session %s: %w", in.SessionName, err)
		}
		in.PaneID = pane
	}
	s = domain.TerminalSession{
		ID:             uuid.New().String(),
		Label:          in.Label,
		SessionName:    in.SessionName,
		PaneID:         in.PaneID,
		CLI:            in.CLI,
		Status:         domain.SessionActive,
		ContextType:    in.ContextType,
		ContextID:      in.ContextID,
		ContextSummary: in.ContextSummary,
		CreatedAt:      e.stamp(),
	}
	if err := e.Repo.InsertTerminalSession(ctx, nil, s); err != nil {
		return domain.TerminalSession{}, err
	}
	return s, nil
}

// CloseTerminalSession marks the session closed and, with a launcher
// configured, asks the daemon to kill it.
func (e Engine) CloseTerminalSession(ctx context.Context, id string) (err error) {
	ctx, done := e.observe(ctx, "close_terminal_session")
	defer func() { done(err) }()

	s, err := e.Repo.GetTerminalSession(ctx, nil, id)
	if err != nil {
		return wrapNotFound(err, "terminal session", id)
	}
	if err := e.Repo.CloseTerminalSession(ctx, nil, id, e.stamp()); err != nil {
		return wrapNotFound(err, "terminal session", id)
	}
	if e.Launcher != nil && s.Status == domain.SessionActive {
		if err := e.Launcher.Kill(ctx, s.SessionName); err != nil {
			e.log().Warn("kill terminal session", "session", s.SessionName, "err", err)
		}
	}
	return nil
}

// ListTerminalTargets derives the addressable panes: agent panes of
// unfinished orchestrations first, then active ad-hoc sessions.
func (e Engine) ListTerminalTargets(ctx context.Context) (out []domain.TerminalTarget, err error) {
	ctx, done := e.observe(ctx, "list_terminal_targets")
	defer func() { done(err) }()

	var agents, adhoc []domain.TerminalTarget
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agents, err = e.agentTargets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		adhoc, err = e.adhocTargets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out = make([]domain.TerminalTarget, 0, len(agents)+len(adhoc))
	out = append(out, agents...)
	return append(out, adhoc...), nil
}

func (e Engine) agentTargets(ctx context.Context) ([]domain.TerminalTarget, error) {
	members, err := e.Repo.ListPanedMembers(ctx)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	teams, err := e.Repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	teamOrch := make(map[string]string, len(teams))
	for _, t := range teams {
		teamOrch[t.ID] = t.OrchestrationID
	}
	orchs, err := e.Repo.ListOrchestrations(ctx, nil, repo.OrchestrationFilters{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Orchestration, len(orchs))
	for _, o := range orchs {
		byID[o.ID] = o
	}
	var out []domain.TerminalTarget
	for _, m := range members {
		orchID, ok := teamOrch[m.TeamID]
		if !ok {
			continue
		}
		o, ok := byID[orchID]
		if !ok || o.Status == domain.OrchestrationComplete {
			continue
		}
		out = append(out, domain.TerminalTarget{
			ID:          m.ID,
			Label:       fmt.Sprintf("%s / %s", o.FeatureName, m.Name),
			SessionName: m.SessionName,
			PaneID:      m.PaneID,
			Type:        domain.TargetAgent,
			CLI:         m.CLI,
		})
	}
	return out, nil
}

func (e Engine) adhocTargets(ctx context.Context) ([]domain.TerminalTarget, error) {
	sessions, err := e.Repo.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TerminalTarget, 0, len(sessions))
	for _, s := range sessions {
		t := domain.TerminalTarget{
			ID:          s.ID,
			Label:       s.Label,
			SessionName: s.SessionName,
			PaneID:      s.PaneID,
			Type:        domain.TargetAdhoc,
			CLI:         s.CLI,
		}
		if s.ContextType != nil && s.ContextID != nil && s.ContextSummary != nil {
			t.Context = &domain.TargetContext{Type: *s.ContextType, ID: *s.ContextID, Summary: *s.ContextSummary}
		}
		out = append(out, t)
	}
	return out, nil
}
