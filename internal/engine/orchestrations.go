package engine

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

func (e Engine) CreateOrchestration(ctx context.Context, projectID, featureName string) (o domain.Orchestration, err error) {
	ctx, done := e.observe(ctx, "create_orchestration", attribute.String("project", projectID))
	defer func() { done(err) }()

	if err := required("feature name", featureName); err != nil {
		return o, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer tx.Rollback()
	if _, err := e.Repo.GetProject(ctx, tx, projectID); err != nil {
		return o, wrapNotFound(err, "project", projectID)
	}
	now := e.stamp()
	o = domain.Orchestration{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		FeatureName: featureName,
		Status:      domain.OrchestrationPlanning,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Repo.InsertOrchestration(ctx, tx, o); err != nil {
		return domain.Orchestration{}, err
	}
	return o, tx.Commit()
}

func (e Engine) GetOrchestration(ctx context.Context, id string) (domain.Orchestration, error) {
	return e.orchestration(ctx, nil, id)
}

func (e Engine) ListOrchestrations(ctx context.Context, projectID string, status domain.OrchestrationStatus) ([]domain.Orchestration, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("unknown orchestration status %q", status)
	}
	return e.Repo.ListOrchestrations(ctx, nil, repo.OrchestrationFilters{ProjectID: projectID, Status: string(status)})
}

// SetOrchestrationStatus moves the orchestration to any known status.
// Transitions are not restricted.
func (e Engine) SetOrchestrationStatus(ctx context.Context, id string, status domain.OrchestrationStatus) (o domain.Orchestration, err error) {
	ctx, done := e.observe(ctx, "set_orchestration_status", attribute.String("status", string(status)))
	defer func() { done(err) }()

	if !status.Valid() {
		return o, invalid("unknown orchestration status %q", status)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer tx.Rollback()
	now := e.stamp()
	var completedAt *string
	if status == domain.OrchestrationComplete {
		completedAt = &now
	}
	if err := e.Repo.UpdateOrchestrationStatus(ctx, tx, id, status, now, completedAt); err != nil {
		return o, wrapNotFound(err, "orchestration", id)
	}
	o, err = e.orchestration(ctx, tx, id)
	if err != nil {
		return o, err
	}
	return o, tx.Commit()
}

// PhasePatch holds the optional phase fields. Nil fields are left as stored.
type PhasePatch struct {
	PlanPath      *string
	GitRange      *string
	PlanningMins  *float64
	ExecutionMins *float64
	ReviewMins    *float64
	StartedAt     *string
	CompletedAt   *string
}

// UpsertPhase creates the phase or patches it in place and returns its id.
// Status is always overwritten; transitions between statuses are not checked.
func (e Engine) UpsertPhase(ctx context.Context, orchestrationID, phaseNumber string, status domain.PhaseStatus, patch PhasePatch) (id string, err error) {
	ctx, done := e.observe(ctx, "upsert_phase", attribute.String("phase", phaseNumber))
	defer func() { done(err) }()

	if err := required("phase number", phaseNumber); err != nil {
		return "", err
	}
	if !status.Valid() {
		return "", invalid("unknown phase status %q", status)
	}
	startedAt, err := normalizeOptional(patch.StartedAt)
	if err != nil {
		return "", err
	}
	completedAt, err := normalizeOptional(patch.CompletedAt)
	if err != nil {
		return "", err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	if _, err := e.orchestration(ctx, tx, orchestrationID); err != nil {
		return "", err
	}
	id, err = e.Repo.UpsertPhase(ctx, tx, repo.PhaseUpsert{
		ID:              uuid.New().String(),
		OrchestrationID: orchestrationID,
		PhaseNumber:     phaseNumber,
		Status:          status,
		PlanPath:        patch.PlanPath,
		GitRange:        patch.GitRange,
		PlanningMins:    patch.PlanningMins,
		ExecutionMins:   patch.ExecutionMins,
		ReviewMins:      patch.ReviewMins,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
		UpdatedAt:       e.stamp(),
	})
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

func (e Engine) GetPhase(ctx context.Context, orchestrationID, phaseNumber string) (domain.Phase, error) {
	p, err := e.Repo.GetPhase(ctx, nil, orchestrationID, phaseNumber)
	return p, wrapNotFound(err, "phase", phaseNumber)
}

func (e Engine) ListPhases(ctx context.Context, orchestrationID string) ([]domain.Phase, error) {
	return e.Repo.ListPhases(ctx, orchestrationID)
}
