package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type actionPath struct {
	ActionID string `path:"action_id"`
}

func registerActions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-action",
		Method:        http.MethodPost,
		Path:          "/actions",
		Summary:       "Queue an action for a node",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body SubmitActionRequest
	}) (*out[IDResponse], error) {
		payload, err := rawJSON(input.Body.Payload)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid payload", nil)
		}
		id, err := e.SubmitAction(ctx, input.Body.NodeID, input.Body.OrchestrationID, input.Body.Type, payload)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pending-actions",
		Method:      http.MethodGet,
		Path:        "/actions",
		Summary:     "List a node's pending actions",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		NodeID string `query:"node_id" required:"true"`
	}) (*out[[]domain.InboundAction], error) {
		items, err := e.PendingActions(ctx, input.NodeID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-action",
		Method:      http.MethodGet,
		Path:        "/actions/{action_id}",
		Summary:     "Get action",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *actionPath) (*out[domain.InboundAction], error) {
		a, err := e.GetAction(ctx, input.ActionID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(a), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "claim-action",
		Method:      http.MethodPost,
		Path:        "/actions/{action_id}/claim",
		Summary:     "Claim a pending action",
		Description: "Always 200. A lost race or unknown id is reported in the body.",
	}, func(ctx context.Context, input *actionPath) (*out[domain.ClaimResult], error) {
		res, err := e.ClaimAction(ctx, input.ActionID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(res), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-action",
		Method:      http.MethodPost,
		Path:        "/actions/{action_id}/complete",
		Summary:     "Record an action's outcome",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ActionID string `path:"action_id"`
		Body     CompleteActionRequest
	}) (*struct{}, error) {
		result, err := rawJSON(input.Body.Result)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid result", nil)
		}
		if err := e.CompleteAction(ctx, input.ActionID, result, input.Body.Success); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "requeue-actions",
		Method:      http.MethodPost,
		Path:        "/actions/requeue",
		Summary:     "Return stale claims to pending",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body RequeueRequest
	}) (*out[CountResponse], error) {
		age := e.Config.Actions.ClaimTTL
		if input.Body.OlderThan != "" {
			d, err := time.ParseDuration(input.Body.OlderThan)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid older_than", map[string]any{"older_than": input.Body.OlderThan})
			}
			age = d
		}
		n, err := e.RequeueStaleClaims(ctx, age)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(CountResponse{Count: n}), nil
	})
}
