package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foreman/internal/domain"
)

const orchestrationCols = `id,project_id,feature_name,status,started_at,updated_at,completed_at`

func scanOrchestration(row interface{ Scan(...any) error }) (domain.Orchestration, error) {
	var o domain.Orchestration
	var completed sql.NullString
	if err := row.Scan(&o.ID, &o.ProjectID, &o.FeatureName, &o.Status, &o.StartedAt, &o.UpdatedAt, &completed); err != nil {
		return o, noRows(err)
	}
	o.CompletedAt = strPtr(completed)
	return o, nil
}

func (r Repo) InsertOrchestration(ctx context.Context, tx *sql.Tx, o domain.Orchestration) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO orchestrations(`+orchestrationCols+`) VALUES (?,?,?,?,?,?,?)`,
		o.ID, o.ProjectID, o.FeatureName, o.Status, o.StartedAt, o.UpdatedAt, nullableStringPtr(o.CompletedAt))
	return err
}

func (r Repo) GetOrchestration(ctx context.Context, tx *sql.Tx, id string) (domain.Orchestration, error) {
	return scanOrchestration(r.conn(tx).QueryRowContext(ctx, `SELECT `+orchestrationCols+` FROM orchestrations WHERE id=?`, id))
}

type OrchestrationFilters struct {
	ProjectID string
	Status    string
}

func (r Repo) ListOrchestrations(ctx context.Context, tx *sql.Tx, f OrchestrationFilters) ([]domain.Orchestration, error) {
	var (
		clauses []string
		args    []any
	)
	if f.ProjectID != "" {
		clauses = append(clauses, "project_id=?")
		args = append(args, f.ProjectID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + orchestrationCols + ` FROM orchestrations`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at, id"
	rows, err := r.conn(tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Orchestration
	for rows.Next() {
		o, err := scanOrchestration(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r Repo) UpdateOrchestrationStatus(ctx context.Context, tx *sql.Tx, id string, status domain.OrchestrationStatus, updatedAt string, completedAt *string) error {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE orchestrations SET status=?, updated_at=?, completed_at=COALESCE(?, completed_at) WHERE id=?`,
		status, updatedAt, nullableStringPtr(completedAt), id)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteOrchestration(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := r.conn(tx).ExecContext(ctx, `DELETE FROM orchestrations WHERE id=?`, id)
	return err
}

// PhaseUpsert carries the key, the status and the sparse optional fields.
// Nil optionals leave the stored value untouched on conflict.
type PhaseUpsert struct {
	ID              string
	OrchestrationID string
	PhaseNumber     string
	Status          domain.PhaseStatus
	PlanPath        *string
	GitRange        *string
	PlanningMins    *float64
	ExecutionMins   *float64
	ReviewMins      *float64
	StartedAt       *string
	CompletedAt     *string
	UpdatedAt       string
}

// UpsertPhase inserts or sparsely patches the phase and returns its stored id.
func (r Repo) UpsertPhase(ctx context.Context, tx *sql.Tx, p PhaseUpsert) (string, error) {
	var id string
	err := r.conn(tx).QueryRowContext(ctx, `INSERT INTO phases(id,orchestration_id,phase_number,status,plan_path,git_range,planning_mins,execution_mins,review_mins,started_at,completed_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(orchestration_id, phase_number) DO UPDATE SET
  status=excluded.status,
  plan_path=COALESCE(excluded.plan_path, phases.plan_path),
  git_range=COALESCE(excluded.git_range, phases.git_range),
  planning_mins=COALESCE(excluded.planning_mins, phases.planning_mins),
  execution_mins=COALESCE(excluded.execution_mins, phases.execution_mins),
  review_mins=COALESCE(excluded.review_mins, phases.review_mins),
  started_at=COALESCE(excluded.started_at, phases.started_at),
  completed_at=COALESCE(excluded.completed_at, phases.completed_at),
  updated_at=excluded.updated_at
RETURNING id`,
		p.ID, p.OrchestrationID, p.PhaseNumber, p.Status, nullableStringPtr(p.PlanPath), nullableStringPtr(p.GitRange),
		nullableFloatPtr(p.PlanningMins), nullableFloatPtr(p.ExecutionMins), nullableFloatPtr(p.ReviewMins),
		nullableStringPtr(p.StartedAt), nullableStringPtr(p.CompletedAt), p.UpdatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert phase %s: %w", p.PhaseNumber, err)
	}
	return id, nil
}

const phaseCols = `id,orchestration_id,phase_number,status,plan_path,git_range,planning_mins,execution_mins,review_mins,started_at,completed_at,updated_at`

func scanPhase(row interface{ Scan(...any) error }) (domain.Phase, error) {
	var (
		p                        domain.Phase
		planPath, gitRange       sql.NullString
		started, completed       sql.NullString
		planning, execMins, revM sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.OrchestrationID, &p.PhaseNumber, &p.Status, &planPath, &gitRange,
		&planning, &execMins, &revM, &started, &completed, &p.UpdatedAt); err != nil {
		return p, noRows(err)
	}
	p.PlanPath = strPtr(planPath)
	p.GitRange = strPtr(gitRange)
	p.PlanningMins = floatPtr(planning)
	p.ExecutionMins = floatPtr(execMins)
	p.ReviewMins = floatPtr(revM)
	p.StartedAt = strPtr(started)
	p.CompletedAt = strPtr(completed)
	return p, nil
}

func (r Repo) GetPhase(ctx context.Context, tx *sql.Tx, orchestrationID, phaseNumber string) (domain.Phase, error) {
	return scanPhase(r.conn(tx).QueryRowContext(ctx, `SELECT `+phaseCols+` FROM phases WHERE orchestration_id=? AND phase_number=?`,
		orchestrationID, phaseNumber))
}

func (r Repo) ListPhases(ctx context.Context, orchestrationID string) ([]domain.Phase, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+phaseCols+` FROM phases WHERE orchestration_id=? ORDER BY `+phaseOrder, orchestrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
