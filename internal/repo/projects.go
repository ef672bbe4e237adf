package repo

import (
	"context"
	"database/sql"
	"fmt"

	"foreman/internal/domain"
)

const projectCols = `id,name,repo_path,created_at`

func scanProject(row interface{ Scan(...any) error }) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.RepoPath, &p.CreatedAt)
	return p, noRows(err)
}

func (r Repo) InsertProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO projects(`+projectCols+`) VALUES (?,?,?,?)`,
		p.ID, p.Name, p.RepoPath, p.CreatedAt)
	if isUnique(err) {
		return fmt.Errorf("project repo path %s: %w", p.RepoPath, ErrDuplicate)
	}
	return err
}

// InsertProjectIfAbsent inserts p unless its repo path is already taken.
func (r Repo) InsertProjectIfAbsent(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO projects(`+projectCols+`) VALUES (?,?,?,?) ON CONFLICT(repo_path) DO NOTHING`,
		p.ID, p.Name, p.RepoPath, p.CreatedAt)
	return err
}

func (r Repo) GetProject(ctx context.Context, tx *sql.Tx, id string) (domain.Project, error) {
	return scanProject(r.conn(tx).QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id=?`, id))
}

func (r Repo) GetProjectByRepoPath(ctx context.Context, tx *sql.Tx, repoPath string) (domain.Project, error) {
	return scanProject(r.conn(tx).QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE repo_path=?`, repoPath))
}

func (r Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) DeleteProject(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	res, err := r.conn(tx).ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}
