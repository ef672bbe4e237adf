package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type reviewPath struct {
	ReviewID string `path:"review_id"`
}

func registerReviews(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-review",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/reviews",
		Summary:       "Open a review",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            CreateReviewRequest
	}) (*out[IDResponse], error) {
		id, err := e.CreateReview(ctx, input.OrchestrationID, input.Body.PhaseNumber, input.Body.ReviewerAgent)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reviews",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/reviews",
		Summary:     "List reviews",
	}, func(ctx context.Context, input *orchPath) (*out[[]domain.Review], error) {
		items, err := e.ListReviews(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-review",
		Method:      http.MethodGet,
		Path:        "/reviews/{review_id}",
		Summary:     "Get review",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *reviewPath) (*out[domain.Review], error) {
		r, err := e.GetReview(ctx, input.ReviewID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(r), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-review",
		Method:      http.MethodPost,
		Path:        "/reviews/{review_id}/complete",
		Summary:     "Close an open review",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ReviewID string `path:"review_id"`
		Body     CompleteReviewRequest
	}) (*struct{}, error) {
		if err := e.CompleteReview(ctx, input.ReviewID, input.Body.State); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "start-check",
		Method:        http.MethodPost,
		Path:          "/reviews/{review_id}/checks",
		Summary:       "Start a check under a review",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ReviewID string `path:"review_id"`
		Body     StartCheckRequest
	}) (*out[IDResponse], error) {
		b := input.Body
		id, err := e.StartCheck(ctx, input.ReviewID, b.OrchestrationID, b.Name, b.Kind, b.Command)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-checks",
		Method:      http.MethodGet,
		Path:        "/reviews/{review_id}/checks",
		Summary:     "List a review's checks",
	}, func(ctx context.Context, input *reviewPath) (*out[[]domain.ReviewCheck], error) {
		items, err := e.ListChecks(ctx, input.ReviewID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-check",
		Method:      http.MethodPost,
		Path:        "/reviews/{review_id}/checks/{name}/complete",
		Summary:     "Finish a running check",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ReviewID string `path:"review_id"`
		Name     string `path:"name"`
		Body     CompleteCheckRequest
	}) (*out[domain.ReviewCheck], error) {
		c, err := e.CompleteCheck(ctx, input.ReviewID, input.Name, input.Body.Status, input.Body.Comment, input.Body.Output)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})
}

func registerGates(api huma.API, e engine.Engine) {
	type gatePath struct {
		OrchestrationID string        `path:"orchestration_id"`
		GateID          domain.GateID `path:"gate_id" enum:"plan,review,finalize"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "upsert-gate",
		Method:      http.MethodPut,
		Path:        "/orchestrations/{orchestration_id}/gates/{gate_id}",
		Summary:     "Set a gate decision",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string        `path:"orchestration_id"`
		GateID          domain.GateID `path:"gate_id" enum:"plan,review,finalize"`
		Body            UpsertGateRequest
	}) (*out[IDResponse], error) {
		b := input.Body
		id, err := e.UpsertGate(ctx, input.OrchestrationID, input.GateID, b.Status, b.Owner, b.DecidedBy, b.Summary)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-gate",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/gates/{gate_id}",
		Summary:     "Get gate",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *gatePath) (*out[domain.ReviewGate], error) {
		g, err := e.GetGate(ctx, input.OrchestrationID, input.GateID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(g), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-gates",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/gates",
		Summary:     "List gates in pipeline order",
	}, func(ctx context.Context, input *orchPath) (*out[[]domain.ReviewGate], error) {
		items, err := e.ListGates(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})
}
