package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func registerTerminals(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-terminal-targets",
		Method:      http.MethodGet,
		Path:        "/terminal-targets",
		Summary:     "Addressable panes: agent panes first, then ad-hoc sessions",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.TerminalTarget], error) {
		items, err := e.ListTerminalTargets(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "open-terminal-session",
		Method:        http.MethodPost,
		Path:          "/terminal-sessions",
		Summary:       "Record or launch an ad-hoc terminal session",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body OpenSessionRequest
	}) (*out[domain.TerminalSession], error) {
		b := input.Body
		s, err := e.OpenTerminalSession(ctx, engine.SessionInput{
			Label:          b.Label,
			SessionName:    b.SessionName,
			PaneID:         b.PaneID,
			CLI:            b.CLI,
			StartDir:       b.StartDir,
			ContextType:    b.ContextType,
			ContextID:      b.ContextID,
			ContextSummary: b.ContextSummary,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(s), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "close-terminal-session",
		Method:      http.MethodDelete,
		Path:        "/terminal-sessions/{session_id}",
		Summary:     "Close an ad-hoc terminal session",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		SessionID string `path:"session_id"`
	}) (*struct{}, error) {
		if err := e.CloseTerminalSession(ctx, input.SessionID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-team",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/teams",
		Summary:       "Create an agent team",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            CreateTeamRequest
	}) (*out[domain.Team], error) {
		t, err := e.CreateTeam(ctx, input.OrchestrationID, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-team-member",
		Method:        http.MethodPost,
		Path:          "/teams/{team_id}/members",
		Summary:       "Add a member to a team",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TeamID string `path:"team_id"`
		Body   AddMemberRequest
	}) (*out[domain.TeamMember], error) {
		b := input.Body
		m, err := e.AddTeamMember(ctx, input.TeamID, engine.MemberInput{
			Name:        b.Name,
			Role:        b.Role,
			CLI:         b.CLI,
			Model:       b.Model,
			SessionName: b.SessionName,
			PaneID:      b.PaneID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(m), nil
	})
}
