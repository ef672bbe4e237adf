package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type pageQuery struct {
	OrchestrationID string `path:"orchestration_id"`
	Since           string `query:"since" doc:"Return entries recorded strictly after this instant"`
	Limit           int    `query:"limit" minimum:"0" doc:"Page size; 0 uses the configured default"`
}

func registerSupervisor(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "upsert-supervisor-state",
		Method:      http.MethodPut,
		Path:        "/supervisor/{feature}",
		Summary:     "Save the supervisor snapshot for a feature",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Feature string `path:"feature"`
		Body    UpsertSupervisorRequest
	}) (*out[IDResponse], error) {
		state, err := rawJSON(input.Body.State)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid state", nil)
		}
		id, err := e.UpsertSupervisorState(ctx, input.Body.NodeID, input.Feature, state, input.Body.UpdatedAt)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-supervisor-state",
		Method:      http.MethodGet,
		Path:        "/supervisor/{feature}",
		Summary:     "Latest supervisor snapshot for a feature",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Feature string `path:"feature"`
		NodeID  string `query:"node_id"`
	}) (*out[domain.SupervisorState], error) {
		s, err := e.GetSupervisorState(ctx, input.NodeID, input.Feature)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(s), nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-event",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/events",
		Summary:       "Append an orchestration event",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            RecordEventRequest
	}) (*out[IDResponse], error) {
		b := input.Body
		id, err := e.RecordEvent(ctx, input.OrchestrationID, engine.EventInput{
			PhaseNumber: b.PhaseNumber,
			EventType:   b.EventType,
			Source:      b.Source,
			Summary:     b.Summary,
			Detail:      b.Detail,
			RecordedAt:  b.RecordedAt,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/events",
		Summary:     "List orchestration events oldest first",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *pageQuery) (*out[[]domain.OrchestrationEvent], error) {
		items, err := e.ListEvents(ctx, input.OrchestrationID, input.Since, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "timeline",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/timeline",
		Summary:     "Merged timeline of events, task changes, checks and gate decisions",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *pageQuery) (*out[[]domain.TimelineEntry], error) {
		items, err := e.Timeline(ctx, input.OrchestrationID, input.Since, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})
}
