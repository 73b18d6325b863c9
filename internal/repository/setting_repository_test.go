package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepositoryGetFallsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, err := repo.Get(context.Background(), "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = ?")).
		WithArgs("teacher_daily_max").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("6"))

	value, err := repo.Get(context.Background(), "teacher_daily_max", "0")
	require.NoError(t, err)
	assert.Equal(t, "6", value)
}

func TestSettingRepositoryPutUpserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectExec("INSERT INTO settings").
		WithArgs("time_budget_seconds", "120").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(context.Background(), "time_budget_seconds", "120"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryMap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "key", "value"}).
		AddRow(1, "class_daily_max", "8").
		AddRow(2, "class_daily_min", "4")
	mock.ExpectQuery("SELECT id, key, value FROM settings").
		WillReturnRows(rows)

	values, err := repo.Map(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"class_daily_max": "8", "class_daily_min": "4"}, values)
}
