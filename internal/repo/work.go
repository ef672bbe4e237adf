package repo

import (
	"context"
	"database/sql"

	"foreman/internal/domain"
)

func (r Repo) InsertDesign(ctx context.Context, tx *sql.Tx, d domain.Design) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO designs(id,project_id,title,body,created_at) VALUES (?,?,?,?,?)`,
		d.ID, d.ProjectID, d.Title, d.Body, d.CreatedAt)
	return err
}

func (r Repo) GetDesign(ctx context.Context, tx *sql.Tx, id string) (domain.Design, error) {
	var d domain.Design
	err := r.conn(tx).QueryRowContext(ctx, `SELECT id,project_id,title,body,created_at FROM designs WHERE id=?`, id).
		Scan(&d.ID, &d.ProjectID, &d.Title, &d.Body, &d.CreatedAt)
	return d, noRows(err)
}

func (r Repo) InsertTicket(ctx context.Context, tx *sql.Tx, t domain.Ticket) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO tickets(id,project_id,number,title,description,created_at) VALUES (?,?,?,?,?,?)`,
		t.ID, t.ProjectID, t.Number, t.Title, t.Description, t.CreatedAt)
	return err
}

func (r Repo) GetTicket(ctx context.Context, tx *sql.Tx, id string) (domain.Ticket, error) {
	var t domain.Ticket
	err := r.conn(tx).QueryRowContext(ctx, `SELECT id,project_id,number,title,description,created_at FROM tickets WHERE id=?`, id).
		Scan(&t.ID, &t.ProjectID, &t.Number, &t.Title, &t.Description, &t.CreatedAt)
	return t, noRows(err)
}

func (r Repo) InsertSpec(ctx context.Context, tx *sql.Tx, s domain.Spec) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO specs(id,project_id,title,created_at) VALUES (?,?,?,?)`,
		s.ID, s.ProjectID, s.Title, s.CreatedAt)
	return err
}

func (r Repo) GetSpec(ctx context.Context, tx *sql.Tx, id string) (domain.Spec, error) {
	var s domain.Spec
	err := r.conn(tx).QueryRowContext(ctx, `SELECT id,project_id,title,created_at FROM specs WHERE id=?`, id).
		Scan(&s.ID, &s.ProjectID, &s.Title, &s.CreatedAt)
	return s, noRows(err)
}

// LinkSpecDesign records the link once; repeated links are ignored.
func (r Repo) LinkSpecDesign(ctx context.Context, tx *sql.Tx, l domain.SpecDesign) (bool, error) {
	res, err := r.conn(tx).ExecContext(ctx, `INSERT INTO spec_designs(spec_id,design_id,created_at) VALUES (?,?,?) ON CONFLICT(spec_id, design_id) DO NOTHING`,
		l.SpecID, l.DesignID, l.CreatedAt)
	if err != nil {
		return false, err
	}
	return affected(res) == 1, nil
}

func (r Repo) ListSpecDesigns(ctx context.Context, specID string) ([]domain.SpecDesign, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT spec_id,design_id,created_at FROM spec_designs WHERE spec_id=? ORDER BY created_at, rowid`, specID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.SpecDesign
	for rows.Next() {
		var l domain.SpecDesign
		if err := rows.Scan(&l.SpecID, &l.DesignID, &l.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

func (r Repo) InsertComment(ctx context.Context, tx *sql.Tx, c domain.WorkComment) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO work_comments(id,project_id,target_type,target_id,author_type,author_name,body,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.ProjectID, c.TargetType, c.TargetID, c.AuthorType, c.AuthorName, c.Body, c.CreatedAt)
	return err
}

func (r Repo) ListComments(ctx context.Context, targetType domain.TargetKind, targetID string) ([]domain.WorkComment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,project_id,target_type,target_id,author_type,author_name,body,created_at
FROM work_comments WHERE target_type=? AND target_id=? ORDER BY created_at, rowid`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.WorkComment
	for rows.Next() {
		var c domain.WorkComment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.TargetType, &c.TargetID, &c.AuthorType, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// NextCounter increments and returns the named per-project counter.
func (r Repo) NextCounter(ctx context.Context, tx *sql.Tx, projectID, name string) (int64, error) {
	var v int64
	err := r.conn(tx).QueryRowContext(ctx, `INSERT INTO project_counters(project_id,name,value) VALUES (?,?,1)
ON CONFLICT(project_id, name) DO UPDATE SET value=project_counters.value+1
RETURNING value`, projectID, name).Scan(&v)
	return v, err
}

// ProjectItemIDs returns ids of a project-scoped table (designs, tickets or specs).
func (r Repo) ProjectItemIDs(ctx context.Context, tx *sql.Tx, table, projectID string) ([]string, error) {
	if !projectTables[table] {
		return nil, errUnknownTable(table)
	}
	return r.ids(ctx, tx, `SELECT id FROM `+table+` WHERE project_id=?`, projectID)
}

func (r Repo) ids(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := r.conn(tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}
