package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

const actionCols = `id,node_id,orchestration_id,type,payload_json,status,result_json,created_at,claimed_at,completed_at`

func scanAction(row interface{ Scan(...any) error }) (domain.InboundAction, error) {
	var (
		a                          domain.InboundAction
		payload                    string
		result, claimed, completed sql.NullString
	)
	if err := row.Scan(&a.ID, &a.NodeID, &a.OrchestrationID, &a.Type, &payload, &a.Status, &result, &a.CreatedAt, &claimed, &completed); err != nil {
		return a, noRows(err)
	}
	a.Payload = []byte(payload)
	if result.Valid {
		a.Result = []byte(result.String)
	}
	a.ClaimedAt = strPtr(claimed)
	a.CompletedAt = strPtr(completed)
	return a, nil
}

func (r Repo) InsertAction(ctx context.Context, tx *sql.Tx, a domain.InboundAction) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO inbound_actions(`+actionCols+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.NodeID, a.OrchestrationID, a.Type, string(a.Payload), a.Status, nullableBytes(a.Result), a.CreatedAt,
		nullableStringPtr(a.ClaimedAt), nullableStringPtr(a.CompletedAt))
	return err
}

func (r Repo) GetAction(ctx context.Context, tx *sql.Tx, id string) (domain.InboundAction, error) {
	return scanAction(r.conn(tx).QueryRowContext(ctx, `SELECT `+actionCols+` FROM inbound_actions WHERE id=?`, id))
}

// ClaimPendingAction flips a pending action to claimed. It reports false
// when the row was not pending at the time of the update.
func (r Repo) ClaimPendingAction(ctx context.Context, tx *sql.Tx, id, claimedAt string) (bool, error) {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE inbound_actions SET status=?, claimed_at=? WHERE id=? AND status=?`,
		domain.ActionClaimed, claimedAt, id, domain.ActionPending)
	if err != nil {
		return false, err
	}
	return affected(res) == 1, nil
}

func (r Repo) FinishAction(ctx context.Context, tx *sql.Tx, id string, status domain.ActionStatus, result []byte, completedAt string) error {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE inbound_actions SET status=?, result_json=?, completed_at=? WHERE id=?`,
		status, nullableBytes(result), completedAt, id)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListPendingActions(ctx context.Context, nodeID string) ([]domain.InboundAction, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+actionCols+` FROM inbound_actions WHERE node_id=? AND status=? ORDER BY created_at, rowid`,
		nodeID, domain.ActionPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.InboundAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// RequeueClaimedBefore returns claimed actions whose claim predates cutoff to pending.
func (r Repo) RequeueClaimedBefore(ctx context.Context, tx *sql.Tx, cutoff string) (int64, error) {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE inbound_actions SET status=?, claimed_at=NULL WHERE status=? AND claimed_at < ?`,
		domain.ActionPending, domain.ActionClaimed, cutoff)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}
