package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

type projectPath struct {
	ProjectID string `path:"project_id"`
}

func registerProjects(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body CreateProjectRequest
	}) (*out[domain.Project], error) {
		p, err := e.CreateProject(ctx, input.Body.Name, input.Body.RepoPath)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-project",
		Method:      http.MethodPost,
		Path:        "/projects/resolve",
		Summary:     "Find or create the project for a repository path",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ResolveProjectRequest
	}) (*out[domain.Project], error) {
		p, err := e.FindOrCreateByRepoPath(ctx, input.Body.Name, input.Body.RepoPath)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
	}, func(ctx context.Context, _ *struct{}) (*out[[]domain.Project], error) {
		items, err := e.ListProjects(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*out[domain.Project], error) {
		p, err := e.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{project_id}",
		Summary:     "Delete a project and everything it owns",
	}, func(ctx context.Context, input *projectPath) (*out[engine.DeleteResult], error) {
		res, err := e.DeleteProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(res), nil
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
