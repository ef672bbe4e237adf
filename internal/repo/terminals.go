package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

func (r Repo) InsertTeam(ctx context.Context, tx *sql.Tx, t domain.Team) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO teams(id,orchestration_id,name,created_at) VALUES (?,?,?,?)`,
		t.ID, t.OrchestrationID, t.Name, t.CreatedAt)
	return err
}

func (r Repo) GetTeam(ctx context.Context, tx *sql.Tx, id string) (domain.Team, error) {
	var t domain.Team
	err := r.conn(tx).QueryRowContext(ctx, `SELECT id,orchestration_id,name,created_at FROM teams WHERE id=?`, id).
		Scan(&t.ID, &t.OrchestrationID, &t.Name, &t.CreatedAt)
	return t, noRows(err)
}

func (r Repo) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,orchestration_id,name,created_at FROM teams`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.OrchestrationID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

const memberCols = `id,team_id,orchestration_id,name,role,cli,model,session_name,pane_id,created_at`

func (r Repo) InsertTeamMember(ctx context.Context, tx *sql.Tx, m domain.TeamMember) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO team_members(`+memberCols+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.TeamID, m.OrchestrationID, m.Name, m.Role, m.CLI, nullableStringPtr(m.Model), m.SessionName, m.PaneID, m.CreatedAt)
	return err
}

// ListPanedMembers returns team members that have a terminal pane assigned.
func (r Repo) ListPanedMembers(ctx context.Context) ([]domain.TeamMember, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+memberCols+` FROM team_members WHERE pane_id <> '' ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TeamMember
	for rows.Next() {
		var (
			m     domain.TeamMember
			model sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.TeamID, &m.OrchestrationID, &m.Name, &m.Role, &m.CLI, &model, &m.SessionName, &m.PaneID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Model = strPtr(model)
		res = append(res, m)
	}
	return res, rows.Err()
}

const sessionCols = `id,label,session_name,pane_id,cli,status,context_type,context_id,context_summary,created_at,closed_at`

func scanSession(row interface{ Scan(...any) error }) (domain.TerminalSession, error) {
	var (
		s                        domain.TerminalSession
		ctype, cid, csum, closed sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Label, &s.SessionName, &s.PaneID, &s.CLI, &s.Status, &ctype, &cid, &csum, &s.CreatedAt, &closed); err != nil {
		return s, noRows(err)
	}
	s.ContextType = strPtr(ctype)
	s.ContextID = strPtr(cid)
	s.ContextSummary = strPtr(csum)
	s.ClosedAt = strPtr(closed)
	return s, nil
}

func (r Repo) InsertTerminalSession(ctx context.Context, tx *sql.Tx, s domain.TerminalSession) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO terminal_sessions(`+sessionCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Label, s.SessionName, s.PaneID, s.CLI, s.Status, nullableStringPtr(s.ContextType), nullableStringPtr(s.ContextID),
		nullableStringPtr(s.ContextSummary), s.CreatedAt, nullableStringPtr(s.ClosedAt))
	return err
}

func (r Repo) GetTerminalSession(ctx context.Context, tx *sql.Tx, id string) (domain.TerminalSession, error) {
	return scanSession(r.conn(tx).QueryRowContext(ctx, `SELECT `+sessionCols+` FROM terminal_sessions WHERE id=?`, id))
}

func (r Repo) CloseTerminalSession(ctx context.Context, tx *sql.Tx, id, closedAt string) error {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE terminal_sessions SET status=?, closed_at=COALESCE(closed_at, ?) WHERE id=?`,
		domain.SessionClosed, closedAt, id)
	if err != nil {
		return err
	}
	if affected(res) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListActiveSessions(ctx context.Context) ([]domain.TerminalSession, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+sessionCols+` FROM terminal_sessions WHERE status=? ORDER BY created_at, rowid`, domain.SessionActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TerminalSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
