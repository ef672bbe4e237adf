package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// orchestrationChildren lists orchestration-scoped tables in deletion order:
// children before the rows they reference.
var orchestrationChildren = []string{
	"inbound_actions",
	"orchestration_events",
	"task_events",
	"review_checks",
	"reviews",
	"review_gates",
	"execution_tasks",
	"team_members",
	"teams",
	"phases",
	"commits",
	"plans",
}

var projectTables = map[string]bool{"designs": true, "tickets": true, "specs": true}

func errUnknownTable(table string) error {
	return fmt.Errorf("unknown table %q", table)
}

// DeleteOrchestrationRows removes every row owned by the orchestration
// except the orchestration itself and supervisor snapshots.
func (r Repo) DeleteOrchestrationRows(ctx context.Context, tx *sql.Tx, orchestrationID string) error {
	for _, table := range orchestrationChildren {
		if _, err := r.conn(tx).ExecContext(ctx, `DELETE FROM `+table+` WHERE orchestration_id=?`, orchestrationID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// CountOrchestrationRows sums rows left in orchestration-scoped tables.
func (r Repo) CountOrchestrationRows(ctx context.Context, tx *sql.Tx, orchestrationID string) (int, error) {
	total := 0
	for _, table := range orchestrationChildren {
		var n int
		if err := r.conn(tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE orchestration_id=?`, orchestrationID).Scan(&n); err != nil {
			return 0, fmt.Errorf("count %s: %w", table, err)
		}
		total += n
	}
	return total, nil
}

func (r Repo) DeleteCommentsFor(ctx context.Context, tx *sql.Tx, targetType, targetID string) (int64, error) {
	res, err := r.conn(tx).ExecContext(ctx, `DELETE FROM work_comments WHERE target_type=? AND target_id=?`, targetType, targetID)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

func (r Repo) DeleteProjectItem(ctx context.Context, tx *sql.Tx, table, id string) error {
	if !projectTables[table] {
		return errUnknownTable(table)
	}
	switch table {
	case "designs":
		if _, err := r.conn(tx).ExecContext(ctx, `DELETE FROM spec_designs WHERE design_id=?`, id); err != nil {
			return err
		}
	case "specs":
		if _, err := r.conn(tx).ExecContext(ctx, `DELETE FROM spec_designs WHERE spec_id=?`, id); err != nil {
			return err
		}
	}
	_, err := r.conn(tx).ExecContext(ctx, `DELETE FROM `+table+` WHERE id=?`, id)
	return err
}

func (r Repo) DeleteCounters(ctx context.Context, tx *sql.Tx, projectID string) error {
	_, err := r.conn(tx).ExecContext(ctx, `DELETE FROM project_counters WHERE project_id=?`, projectID)
	return err
}

// DeleteProjectComments sweeps any comment still attached to the project.
func (r Repo) DeleteProjectComments(ctx context.Context, tx *sql.Tx, projectID string) (int64, error) {
	res, err := r.conn(tx).ExecContext(ctx, `DELETE FROM work_comments WHERE project_id=?`, projectID)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}
