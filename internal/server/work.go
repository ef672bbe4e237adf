package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func registerWork(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-design",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/designs",
		Summary:       "Create design",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		Body      CreateDesignRequest
	}) (*out[domain.Design], error) {
		d, err := e.CreateDesign(ctx, input.ProjectID, input.Body.Title, input.Body.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(d), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-ticket",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/tickets",
		Summary:       "File a ticket",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		Body      CreateTicketRequest
	}) (*out[domain.Ticket], error) {
		t, err := e.CreateTicket(ctx, input.ProjectID, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-spec",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/specs",
		Summary:       "Create spec",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		Body      CreateSpecRequest
	}) (*out[domain.Spec], error) {
		s, err := e.CreateSpec(ctx, input.ProjectID, input.Body.Title)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(s), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "link-spec-design",
		Method:      http.MethodPut,
		Path:        "/specs/{spec_id}/designs/{design_id}",
		Summary:     "Link a spec to a design",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		SpecID   string `path:"spec_id"`
		DesignID string `path:"design_id"`
	}) (*out[CreatedResponse], error) {
		created, err := e.LinkSpecDesign(ctx, input.SpecID, input.DesignID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(CreatedResponse{Created: created}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-spec-designs",
		Method:      http.MethodGet,
		Path:        "/specs/{spec_id}/designs",
		Summary:     "List a spec's design links",
	}, func(ctx context.Context, input *struct {
		SpecID string `path:"spec_id"`
	}) (*out[[]domain.SpecDesign], error) {
		items, err := e.ListSpecDesigns(ctx, input.SpecID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-comment",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/comments",
		Summary:       "Comment on a design or ticket",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		Body      AddCommentRequest
	}) (*out[domain.WorkComment], error) {
		b := input.Body
		c, err := e.AddComment(ctx, input.ProjectID, engine.CommentInput{
			TargetType: b.TargetType,
			TargetID:   b.TargetID,
			AuthorType: b.AuthorType,
			AuthorName: b.AuthorName,
			Body:       b.Body,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-comments",
		Method:      http.MethodGet,
		Path:        "/comments",
		Summary:     "List comments on a target",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		TargetType string `query:"target_type" required:"true" enum:"design,ticket"`
		TargetID   string `query:"target_id" required:"true"`
	}) (*out[[]domain.WorkComment], error) {
		items, err := e.ListComments(ctx, domain.TargetKind(input.TargetType), input.TargetID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})
}

func registerArtifacts(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "record-commit",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/commits",
		Summary:       "Record a commit",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            RecordCommitRequest
	}) (*out[domain.Commit], error) {
		b := input.Body
		c, err := e.RecordCommit(ctx, input.OrchestrationID, engine.CommitInput{
			PhaseNumber: b.PhaseNumber,
			SHA:         b.SHA,
			Message:     b.Message,
			Author:      b.Author,
			CommittedAt: b.CommittedAt,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return reply(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-commits",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/commits",
		Summary:     "List commits",
	}, func(ctx context.Context, input *orchPath) (*out[[]domain.Commit], error) {
		items, err := e.ListCommits(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "save-plan",
		Method:        http.MethodPost,
		Path:          "/orchestrations/{orchestration_id}/plans",
		Summary:       "Save a plan document",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		OrchestrationID string `path:"orchestration_id"`
		Body            SavePlanRequest
	}) (*out[domain.Plan], error) {
		p, err := e.SavePlan(ctx, input.OrchestrationID, input.Body.PhaseNumber, input.Body.Path, input.Body.Content)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-plans",
		Method:      http.MethodGet,
		Path:        "/orchestrations/{orchestration_id}/plans",
		Summary:     "List plans",
	}, func(ctx context.Context, input *orchPath) (*out[[]domain.Plan], error) {
		items, err := e.ListPlans(ctx, input.OrchestrationID)
		if err != nil {
			return nil, handleError(err)
		}
		return reply(nonNil(items)), nil
	})
}
