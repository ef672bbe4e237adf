package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type orchPath struct {
	OrchestrationID string `path:"orchestration_id"`
}

type phasePath struct {
	OrchestrationID string `path:"orchestration_id"`
	PhaseNumber     string `path:"phase"`
}

type taskPath struct {
	OrchestrationID string `path:"orchestration_id"`
	PhaseNumber     string `path:"phase"`
	TaskNumber      int    `path:"task" minimum:"1"`
}

func registerOrchestrations(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-orchestration",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/orchestrations",
		Summary:       "Start an orchestration",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		Body      CreateOrchestrationRequest
	}) (*out[domain.Orchestration], error) {
		o, err := e.CreateOrchestration(ctx, input.ProjectID, input.Body.FeatureName)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(o), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-orchestrations",
		Method:      http.MethodGet,
		Path:        "/orchestrations",
		Summary:     "List orchestrations",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		ProjectID string `query:"project_id"`
		Status    string `query:"status" enum:"planning,executing,reviewing,complete,blocked"`
	}) (*out[[]domain.Orchestration], error) {
		items, err := e.ListOrchestrations(ctx, input.ProjectID, domain.OrchestrationStatus(input.Status))
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-orchestration",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}",
		Summary:     "Get orchestration",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *orchPath) (*out[domain.Orchestration], error) {
		o, err := e.GetOrchestration(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(o), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-orchestration-status",
		Method:      http.MethodPut,
		Path:        "/orchestrations/{orchestration_id}/status",
		Summary:     "Set orchestration status",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            SetOrchestrationStatusRequest
	}) (*out[domain.Orchestration], error) {
		o, err := e.SetOrchestrationStatus(ctx, input.OrchestrationID, input.Body.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(o), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-phase",
		Method:      http.MethodPut,
		Path:        "/orchestrations/{orchestration_id}/phases/{phase}",
		Summary:     "Create or patch a phase",
		Description: "Omitted optional fields keep their stored value; status is always overwritten.",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		PhaseNumber     string `path:"phase"`
		Body            UpsertPhaseRequest
	}) (*out[IDResponse], error) {
		b := input.Body
		id, err := e.UpsertPhase(ctx, input.OrchestrationID, input.PhaseNumber, b.Status, engine.PhasePatch{
			PlanPath:      b.PlanPath,
			GitRange:      b.GitRange,
			PlanningMins:  b.PlanningMins,
			ExecutionMins: b.ExecutionMins,
			ReviewMins:    b.ReviewMins,
			StartedAt:     b.StartedAt,
			CompletedAt:   b.CompletedAt,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDResponse{ID: id}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-phases",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/phases",
		Summary:     "List phases",
	}, func(ctx context.Context, input *orchPath) (*out[[]domain.Phase], error) {
		items, err := e.ListPhases(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-phase",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/phases/{phase}",
		Summary:     "Get phase",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *phasePath) (*out[domain.Phase], error) {
		p, err := e.GetPhase(ctx, input.OrchestrationID, input.PhaseNumber)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "seed-tasks",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/phases/{phase}/tasks",
		Summary:       "Seed a phase's execution tasks",
		Description:   "Allowed once per phase. A second call fails with already_seeded.",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		PhaseNumber     string `path:"phase"`
		Body            SeedTasksRequest
	}) (*out[IDsResponse], error) {
		ids, err := e.SeedExecutionTasks(ctx, input.OrchestrationID, input.PhaseNumber, input.Body.Tasks)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(IDsResponse{IDs: ids}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/tasks",
		Summary:     "List execution tasks",
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Phase           string `query:"phase"`
	}) (*out[[]domain.ExecutionTask], error) {
		var phase *string
		if input.Phase != "" {
			phase = &input.Phase
		}
		items, err := e.ListExecutionTasks(ctx, input.OrchestrationID, phase)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ready-tasks",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/phases/{phase}/ready-tasks",
		Summary:     "Pending tasks whose dependencies are completed",
	}, func(ctx context.Context, input *phasePath) (*out[[]domain.ExecutionTask], error) {
		items, err := e.ReadyExecutionTasks(ctx, input.OrchestrationID, input.PhaseNumber)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/phases/{phase}/tasks/{task}",
		Summary:     "Get execution task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *taskPath) (*out[domain.ExecutionTask], error) {
		t, err := e.GetExecutionTask(ctx, input.OrchestrationID, input.PhaseNumber, input.TaskNumber)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/orchestrations/{orchestration_id}/phases/{phase}/tasks/{task}",
		Summary:     "Update execution task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		PhaseNumber     string `path:"phase"`
		TaskNumber      int    `path:"task" minimum:"1"`
		Body            UpdateTaskRequest
	}) (*out[domain.ExecutionTask], error) {
		b := input.Body
		t, err := e.UpdateExecutionTask(ctx, input.OrchestrationID, input.PhaseNumber, input.TaskNumber, engine.TaskUpdate{
			Subject:          b.Subject,
			Description:      b.Description,
			Model:            b.Model,
			Status:           b.Status,
			ExpectedRevision: b.ExpectedRevision,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(t), nil
	})
}
