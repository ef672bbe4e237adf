package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

// LatestSupervisorState returns the most recently updated snapshot for a
// feature. Equal timestamps resolve to the later write.
func (r Repo) LatestSupervisorState(ctx context.Context, tx *sql.Tx, featureName string) (domain.SupervisorState, error) {
	var (
		s     domain.SupervisorState
		state string
	)
	err := r.conn(tx).QueryRowContext(ctx, `SELECT id,node_id,feature_name,state_json,updated_at FROM supervisor_states
WHERE feature_name=? ORDER BY updated_at DESC, seq DESC LIMIT 1`, featureName).
		Scan(&s.ID, &s.NodeID, &s.FeatureName, &state, &s.UpdatedAt)
	if err != nil {
		return s, noRows(err)
	}
	s.State = []byte(state)
	return s, nil
}

func (r Repo) InsertSupervisorState(ctx context.Context, tx *sql.Tx, s domain.SupervisorState) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO supervisor_states(id,node_id,feature_name,state_json,updated_at) VALUES (?,?,?,?,?)`,
		s.ID, s.NodeID, s.FeatureName, string(s.State), s.UpdatedAt)
	return err
}

func (r Repo) UpdateSupervisorState(ctx context.Context, tx *sql.Tx, s domain.SupervisorState) error {
	_, err := r.conn(tx).ExecContext(ctx, `UPDATE supervisor_states SET node_id=?, state_json=?, updated_at=? WHERE id=?`,
		s.NodeID, string(s.State), s.UpdatedAt, s.ID)
	return err
}

func (r Repo) DeleteSupervisorStates(ctx context.Context, tx *sql.Tx, featureName string) error {
	_, err := r.conn(tx).ExecContext(ctx, `DELETE FROM supervisor_states WHERE feature_name=?`, featureName)
	return err
}
