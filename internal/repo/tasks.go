package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"foreman/internal/domain"
)

const taskCols = `id,orchestration_id,phase_number,task_number,subject,description,status,depends_on_json,revision,model,created_at,updated_at,started_at,completed_at`

func scanTask(row interface{ Scan(...any) error }) (domain.ExecutionTask, error) {
	var (
		t                  domain.ExecutionTask
		desc, model        sql.NullString
		started, completed sql.NullString
		deps               string
	)
	if err := row.Scan(&t.ID, &t.OrchestrationID, &t.PhaseNumber, &t.TaskNumber, &t.Subject, &desc, &t.Status, &deps,
		&t.Revision, &model, &t.CreatedAt, &t.UpdatedAt, &started, &completed); err != nil {
		return t, noRows(err)
	}
	if err := json.Unmarshal([]byte(deps), &t.DependsOn); err != nil {
		return t, fmt.Errorf("task %s depends_on: %w", t.ID, err)
	}
	if t.DependsOn == nil {
		t.DependsOn = []int{}
	}
	t.Description = strPtr(desc)
	t.Model = strPtr(model)
	t.StartedAt = strPtr(started)
	t.CompletedAt = strPtr(completed)
	return t, nil
}

func (r Repo) CountTasks(ctx context.Context, tx *sql.Tx, orchestrationID, phaseNumber string) (int, error) {
	var n int
	err := r.conn(tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM execution_tasks WHERE orchestration_id=? AND phase_number=?`,
		orchestrationID, phaseNumber).Scan(&n)
	return n, err
}

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.ExecutionTask) error {
	deps := t.DependsOn
	if deps == nil {
		deps = []int{}
	}
	data, err := json.Marshal(deps)
	if err != nil {
		return err
	}
	_, err = r.conn(tx).ExecContext(ctx, `INSERT INTO execution_tasks(`+taskCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.OrchestrationID, t.PhaseNumber, t.TaskNumber, t.Subject, nullableStringPtr(t.Description), t.Status, string(data),
		t.Revision, nullableStringPtr(t.Model), t.CreatedAt, t.UpdatedAt, nullableStringPtr(t.StartedAt), nullableStringPtr(t.CompletedAt))
	if isUnique(err) {
		return fmt.Errorf("task %s/%d: %w", t.PhaseNumber, t.TaskNumber, ErrDuplicate)
	}
	return err
}

func (r Repo) GetTask(ctx context.Context, tx *sql.Tx, orchestrationID, phaseNumber string, taskNumber int) (domain.ExecutionTask, error) {
	return scanTask(r.conn(tx).QueryRowContext(ctx, `SELECT `+taskCols+` FROM execution_tasks WHERE orchestration_id=? AND phase_number=? AND task_number=?`,
		orchestrationID, phaseNumber, taskNumber))
}

// ListTasks returns tasks of an orchestration, optionally narrowed to one phase.
func (r Repo) ListTasks(ctx context.Context, tx *sql.Tx, orchestrationID string, phaseNumber *string) ([]domain.ExecutionTask, error) {
	clauses := []string{"orchestration_id=?"}
	args := []any{orchestrationID}
	if phaseNumber != nil {
		clauses = append(clauses, "phase_number=?")
		args = append(args, *phaseNumber)
	}
	rows, err := r.conn(tx).QueryContext(ctx, `SELECT `+taskCols+` FROM execution_tasks WHERE `+strings.Join(clauses, " AND ")+
		` ORDER BY `+phaseOrder+`, task_number`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ExecutionTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// SaveTask writes back every mutable column of an existing task.
func (r Repo) SaveTask(ctx context.Context, tx *sql.Tx, t domain.ExecutionTask) error {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE execution_tasks SET subject=?, description=?, status=?, revision=?, model=?, updated_at=?, started_at=?, completed_at=? WHERE id=?`,
		t.Subject, nullableStringPtr(t.Description), t.Status, t.Revision, nullableStringPtr(t.Model), t.UpdatedAt,
		nullableStringPtr(t.StartedAt), nullableStringPtr(t.CompletedAt), t.ID)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) InsertTaskEvent(ctx context.Context, tx *sql.Tx, ev domain.TaskEvent) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO task_events(id,orchestration_id,phase_number,task_number,event_type,from_status,to_status,recorded_at) VALUES (?,?,?,?,?,?,?,?)`,
		ev.ID, ev.OrchestrationID, ev.PhaseNumber, ev.TaskNumber, ev.EventType, nullableStringPtr(ev.FromStatus), nullableStringPtr(ev.ToStatus), ev.RecordedAt)
	return err
}

// ListTaskEvents returns task events after since (exclusive) in recorded order.
func (r Repo) ListTaskEvents(ctx context.Context, orchestrationID, since string, limit int) ([]domain.TaskEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,orchestration_id,phase_number,task_number,event_type,from_status,to_status,recorded_at
FROM task_events WHERE orchestration_id=? AND recorded_at > ? ORDER BY recorded_at, rowid LIMIT ?`, orchestrationID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TaskEvent
	for rows.Next() {
		var (
			ev       domain.TaskEvent
			from, to sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.OrchestrationID, &ev.PhaseNumber, &ev.TaskNumber, &ev.EventType, &from, &to, &ev.RecordedAt); err != nil {
			return nil, err
		}
		ev.FromStatus = strPtr(from)
		ev.ToStatus = strPtr(to)
		res = append(res, ev)
	}
	return res, rows.Err()
}
