package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

type DeleteResult struct {
	Deleted               bool   `json:"deleted"`
	DeletedProjectID      string `json:"deleted_project_id,omitempty"`
	DeletedOrchestrations int    `json:"deleted_orchestrations"`
	DeletedDesigns        int    `json:"deleted_designs"`
	DeletedTickets        int    `json:"deleted_tickets"`
	DeletedSpecs          int    `json:"deleted_specs"`
	DeletedComments       int64  `json:"deleted_comments"`
}

// DeleteProject removes a project and everything reachable from it in one
// transaction. Deleting a missing project reports Deleted=false.
//
// Supervisor snapshots are keyed by feature name only, so deleting an
// orchestration also drops snapshots of any other orchestration sharing
// its feature name.
func (e Engine) DeleteProject(ctx context.Context, projectID string) (res DeleteResult, err error) {
	ctx, done := e.observe(ctx, "delete_project", attribute.String("project", projectID))
	defer func() { done(err) }()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()
	if _, err := e.Repo.GetProject(ctx, tx, projectID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return DeleteResult{}, nil
		}
		return res, err
	}

	orchs, err := e.Repo.ListOrchestrations(ctx, tx, repo.OrchestrationFilters{ProjectID: projectID})
	if err != nil {
		return res, err
	}
	for _, o := range orchs {
		if err := e.Repo.DeleteOrchestrationRows(ctx, tx, o.ID); err != nil {
			return res, fmt.Errorf("orchestration %s: %w", o.ID, err)
		}
		if err := e.Repo.DeleteSupervisorStates(ctx, tx, o.FeatureName); err != nil {
			return res, err
		}
		if err := e.Repo.DeleteOrchestration(ctx, tx, o.ID); err != nil {
			return res, err
		}
	}
	res.DeletedOrchestrations = len(orchs)

	items := []struct {
		table  string
		target domain.TargetKind
		count  *int
	}{
		{"designs", domain.TargetDesign, &res.DeletedDesigns},
		{"tickets", domain.TargetTicket, &res.DeletedTickets},
		{"specs", "", &res.DeletedSpecs},
	}
	for _, it := range items {
		ids, err := e.Repo.ProjectItemIDs(ctx, tx, it.table, projectID)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			if it.target != "" {
				n, err := e.Repo.DeleteCommentsFor(ctx, tx, string(it.target), id)
				if err != nil {
					return res, err
				}
				res.DeletedComments += n
			}
			if err := e.Repo.DeleteProjectItem(ctx, tx, it.table, id); err != nil {
				return res, fmt.Errorf("delete %s %s: %w", it.table, id, err)
			}
		}
		*it.count = len(ids)
	}
	n, err := e.Repo.DeleteProjectComments(ctx, tx, projectID)
	if err != nil {
		return res, err
	}
	res.DeletedComments += n
	if err := e.Repo.DeleteCounters(ctx, tx, projectID); err != nil {
		return res, err
	}
	if _, err := e.Repo.DeleteProject(ctx, tx, projectID); err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return DeleteResult{}, err
	}
	res.Deleted = true
	res.DeletedProjectID = projectID
	e.log().Info("project deleted", "project", projectID, "orchestrations", res.DeletedOrchestrations,
		"designs", res.DeletedDesigns, "tickets", res.DeletedTickets, "comments", res.DeletedComments)
	return res, nil
}
