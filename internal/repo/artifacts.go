package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

func (r Repo) InsertCommit(ctx context.Context, tx *sql.Tx, c domain.Commit) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO commits(id,orchestration_id,phase_number,sha,message,author,committed_at) VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.OrchestrationID, nullableStringPtr(c.PhaseNumber), c.SHA, c.Message, c.Author, c.CommittedAt)
	return err
}

func (r Repo) ListCommits(ctx context.Context, orchestrationID string) ([]domain.Commit, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,orchestration_id,phase_number,sha,message,author,committed_at FROM commits
WHERE orchestration_id=? ORDER BY committed_at, rowid`, orchestrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Commit
	for rows.Next() {
		var (
			c     domain.Commit
			phase sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.OrchestrationID, &phase, &c.SHA, &c.Message, &c.Author, &c.CommittedAt); err != nil {
			return nil, err
		}
		c.PhaseNumber = strPtr(phase)
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) InsertPlan(ctx context.Context, tx *sql.Tx, p domain.Plan) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO plans(id,orchestration_id,phase_number,path,content,created_at) VALUES (?,?,?,?,?,?)`,
		p.ID, p.OrchestrationID, nullableStringPtr(p.PhaseNumber), p.Path, p.Content, p.CreatedAt)
	return err
}

func (r Repo) ListPlans(ctx context.Context, orchestrationID string) ([]domain.Plan, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,orchestration_id,phase_number,path,content,created_at FROM plans
WHERE orchestration_id=? ORDER BY created_at, rowid`, orchestrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Plan
	for rows.Next() {
		var (
			p     domain.Plan
			phase sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.OrchestrationID, &phase, &p.Path, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.PhaseNumber = strPtr(phase)
		res = append(res, p)
	}
	return res, rows.Err()
}
