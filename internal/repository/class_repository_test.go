package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "section", "weekly_total_hours"}).
		AddRow(1, "10", "A", 30).
		AddRow(2, "10", "B", 30)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, section, weekly_total_hours FROM classes ORDER BY name ASC, section ASC")).
		WillReturnRows(rows)

	classes, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assert.Equal(t, "10/A", classes[0].Label())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs("10", "A", 30).
		WillReturnResult(sqlmock.NewResult(7, 1))

	class := &models.Class{Name: "10", Section: "A", WeeklyTotalHours: 30}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.Equal(t, int64(7), class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("DELETE FROM classes").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictOnCarriesNaturalKey(t *testing.T) {
	driverErr := sqlite3.Error{Code: sqlite3.ErrConstraint}
	err := conflictOn(driverErr, "class 10/A")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Contains(t, appErrors.FromError(err).Message, "class 10/A")
}

func TestConflictOnPassesThroughOtherErrors(t *testing.T) {
	cause := context.DeadlineExceeded
	err := conflictOn(cause, "class 10/A")
	assert.Equal(t, cause, err)
}
