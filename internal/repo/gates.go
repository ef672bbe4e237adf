package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

const gateCols = `id,orchestration_id,gate_id,status,owner,decided_by,decided_at,summary,updated_at`

func scanGate(row interface{ Scan(...any) error }) (domain.ReviewGate, error) {
	var (
		g                   domain.ReviewGate
		decidedBy, decidedA sql.NullString
	)
	if err := row.Scan(&g.ID, &g.OrchestrationID, &g.GateID, &g.Status, &g.Owner, &decidedBy, &decidedA, &g.Summary, &g.UpdatedAt); err != nil {
		return g, noRows(err)
	}
	g.DecidedBy = strPtr(decidedBy)
	g.DecidedAt = strPtr(decidedA)
	return g, nil
}

// UpsertGate inserts or overwrites the gate keyed by (orchestration, gate id)
// and returns the stored record id.
func (r Repo) UpsertGate(ctx context.Context, tx *sql.Tx, g domain.ReviewGate) (string, error) {
	var id string
	err := r.conn(tx).QueryRowContext(ctx, `INSERT INTO review_gates(`+gateCols+`) VALUES (?,?,?,?,?,?,?,?,?)
ON CONFLICT(orchestration_id, gate_id) DO UPDATE SET
  status=excluded.status,
  owner=excluded.owner,
  decided_by=excluded.decided_by,
  decided_at=excluded.decided_at,
  summary=excluded.summary,
  updated_at=excluded.updated_at
RETURNING id`,
		g.ID, g.OrchestrationID, g.GateID, g.Status, g.Owner, nullableStringPtr(g.DecidedBy), nullableStringPtr(g.DecidedAt), g.Summary, g.UpdatedAt).Scan(&id)
	return id, err
}

func (r Repo) GetGate(ctx context.Context, tx *sql.Tx, orchestrationID string, gateID domain.GateID) (domain.ReviewGate, error) {
	return scanGate(r.conn(tx).QueryRowContext(ctx, `SELECT `+gateCols+` FROM review_gates WHERE orchestration_id=? AND gate_id=?`, orchestrationID, gateID))
}

func (r Repo) ListGates(ctx context.Context, orchestrationID string) ([]domain.ReviewGate, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+gateCols+` FROM review_gates WHERE orchestration_id=?
ORDER BY CASE gate_id WHEN 'plan' THEN 0 WHEN 'review' THEN 1 WHEN 'finalize' THEN 2 ELSE 3 END`, orchestrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ReviewGate
	for rows.Next() {
		g, err := scanGate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

// ListDecidedGates returns gates of an orchestration decided after since.
func (r Repo) ListDecidedGates(ctx context.Context, orchestrationID, since string, limit int) ([]domain.ReviewGate, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+gateCols+` FROM review_gates WHERE orchestration_id=? AND decided_at IS NOT NULL AND decided_at > ?
ORDER BY decided_at, rowid LIMIT ?`, orchestrationID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ReviewGate
	for rows.Next() {
		g, err := scanGate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}
