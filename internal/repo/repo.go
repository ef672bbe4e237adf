package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Repo is the SQL access layer. Every method takes an optional *sql.Tx;
// a nil tx runs the statement directly against DB.
type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// phaseOrder sorts integer phase numbers numerically, then any other
// phase labels as text after them.
const phaseOrder = `(phase_number = '' OR phase_number GLOB '*[^0-9]*'), CAST(phase_number AS INTEGER), phase_number`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r Repo) conn(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.DB
}

// isUnique reports whether err is a uniqueness or primary key violation.
func isUnique(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBytes(v []byte) any {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func affected(res sql.Result) int64 {
	n, _ := res.RowsAffected()
	return n
}
