package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

// isUniqueViolation recognises uniqueness-constraint failures for both
// supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// conflictOn maps a write error to a Conflict carrying the natural key, or
// returns it unchanged otherwise.
func conflictOn(err error, naturalKey string) error {
	if isUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate %s", naturalKey))
	}
	return err
}

// insertID runs an insert and returns the generated integer primary key,
// papering over the sqlite/postgres RETURNING split. The query uses `?`
// placeholders and must not carry a RETURNING clause.
func insertID(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (int64, error) {
	if db.DriverName() == "postgres" {
		var id int64
		if err := db.GetContext(ctx, &id, db.Rebind(query+" RETURNING id"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
