package repo

import (
	"context"
	"database/sql"
	"fmt"

	"foreman/internal/domain"
)

const reviewCols = `id,orchestration_id,phase_number,reviewer_agent,state,started_at,completed_at`

func scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var (
		rv               domain.Review
		phase, completed sql.NullString
	)
	if err := row.Scan(&rv.ID, &rv.OrchestrationID, &phase, &rv.ReviewerAgent, &rv.State, &rv.StartedAt, &completed); err != nil {
		return rv, noRows(err)
	}
	rv.PhaseNumber = strPtr(phase)
	rv.CompletedAt = strPtr(completed)
	return rv, nil
}

func (r Repo) InsertReview(ctx context.Context, tx *sql.Tx, rv domain.Review) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO reviews(`+reviewCols+`) VALUES (?,?,?,?,?,?,?)`,
		rv.ID, rv.OrchestrationID, nullableStringPtr(rv.PhaseNumber), rv.ReviewerAgent, rv.State, rv.StartedAt, nullableStringPtr(rv.CompletedAt))
	return err
}

func (r Repo) GetReview(ctx context.Context, tx *sql.Tx, id string) (domain.Review, error) {
	return scanReview(r.conn(tx).QueryRowContext(ctx, `SELECT `+reviewCols+` FROM reviews WHERE id=?`, id))
}

func (r Repo) ListReviews(ctx context.Context, orchestrationID string) ([]domain.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+reviewCols+` FROM reviews WHERE orchestration_id=? ORDER BY started_at, rowid`, orchestrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rv)
	}
	return res, rows.Err()
}

// CloseReview moves an open review to a terminal state. It reports false
// if the review was no longer open.
func (r Repo) CloseReview(ctx context.Context, tx *sql.Tx, id string, state domain.ReviewState, completedAt string) (bool, error) {
	res, err := r.conn(tx).ExecContext(ctx, `UPDATE reviews SET state=?, completed_at=? WHERE id=? AND state=?`,
		state, completedAt, id, domain.ReviewOpen)
	if err != nil {
		return false, err
	}
	return affected(res) == 1, nil
}

const checkCols = `id,review_id,orchestration_id,name,kind,command,status,comment,output,started_at,completed_at,duration_ms`

func scanCheck(row interface{ Scan(...any) error }) (domain.ReviewCheck, error) {
	var (
		c                        domain.ReviewCheck
		command, comment, output sql.NullString
		completed                sql.NullString
		duration                 sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.ReviewID, &c.OrchestrationID, &c.Name, &c.Kind, &command, &c.Status, &comment, &output,
		&c.StartedAt, &completed, &duration); err != nil {
		return c, noRows(err)
	}
	c.Command = strPtr(command)
	c.Comment = strPtr(comment)
	c.Output = strPtr(output)
	c.CompletedAt = strPtr(completed)
	if duration.Valid {
		d := duration.Int64
		c.DurationMs = &d
	}
	return c, nil
}

func (r Repo) InsertCheck(ctx context.Context, tx *sql.Tx, c domain.ReviewCheck) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO review_checks(id,review_id,orchestration_id,name,kind,command,status,started_at) VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.ReviewID, c.OrchestrationID, c.Name, c.Kind, nullableStringPtr(c.Command), c.Status, c.StartedAt)
	if isUnique(err) {
		return fmt.Errorf("check %s: %w", c.Name, ErrDuplicate)
	}
	return err
}

func (r Repo) GetCheck(ctx context.Context, tx *sql.Tx, reviewID, name string) (domain.ReviewCheck, error) {
	return scanCheck(r.conn(tx).QueryRowContext(ctx, `SELECT `+checkCols+` FROM review_checks WHERE review_id=? AND name=?`, reviewID, name))
}

func (r Repo) FinishCheck(ctx context.Context, tx *sql.Tx, c domain.ReviewCheck) error {
	_, err := r.conn(tx).ExecContext(ctx, `UPDATE review_checks SET status=?, comment=?, output=?, completed_at=?, duration_ms=? WHERE id=?`,
		c.Status, nullableStringPtr(c.Comment), nullableStringPtr(c.Output), nullableStringPtr(c.CompletedAt), c.DurationMs, c.ID)
	return err
}

func (r Repo) ListChecks(ctx context.Context, reviewID string) ([]domain.ReviewCheck, error) {
	return r.queryChecks(ctx, `SELECT `+checkCols+` FROM review_checks WHERE review_id=? ORDER BY started_at, rowid`, reviewID)
}

// ListFinishedChecks returns checks of an orchestration completed after since.
func (r Repo) ListFinishedChecks(ctx context.Context, orchestrationID, since string, limit int) ([]domain.ReviewCheck, error) {
	return r.queryChecks(ctx, `SELECT `+checkCols+` FROM review_checks WHERE orchestration_id=? AND completed_at IS NOT NULL AND completed_at > ?
ORDER BY completed_at, rowid LIMIT ?`, orchestrationID, since, limit)
}

func (r Repo) queryChecks(ctx context.Context, query string, args ...any) ([]domain.ReviewCheck, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ReviewCheck
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
