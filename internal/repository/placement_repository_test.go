package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulsoft/dersplan/internal/models"
)

func TestPlacementRepositoryReplaceAllIsTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlacementRepository(db)

	roomID := int64(1)
	rows := []models.Placement{
		{ClassID: 1, TeacherID: 1, CourseID: 1, RoomID: &roomID, Day: 0, Period: 0},
		{ClassID: 1, TeacherID: 1, CourseID: 1, RoomID: &roomID, Day: 0, Period: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM placements")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO placements").
		WithArgs(int64(1), int64(1), int64(1), &roomID, 0, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO placements").
		WithArgs(int64(1), int64(1), int64(1), &roomID, 0, 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlacementRepositoryReplaceAllRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlacementRepository(db)

	roomID := int64(1)
	rows := []models.Placement{{ClassID: 1, TeacherID: 1, CourseID: 1, RoomID: &roomID}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM placements")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO placements").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	require.Error(t, repo.ReplaceAll(context.Background(), rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlacementRepositoryFindAtSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlacementRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "class_id", "teacher_id", "course_id", "room_id", "day", "period",
		"class_name", "class_section", "teacher_name", "course_name", "room_name",
	}).AddRow(9, 1, 1, 1, 1, 2, 3, "10", "A", "T1", "Math", "R1")
	mock.ExpectQuery("SELECT p.id, p.class_id").
		WithArgs(2, 3, int64(1)).
		WillReturnRows(rows)

	detail, err := repo.FindAtSlot(context.Background(), 2, 3, 1)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, int64(9), detail.ID)
	assert.Equal(t, "Math", detail.CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlacementRepositoryFindAtSlotEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlacementRepository(db)

	mock.ExpectQuery("SELECT p.id, p.class_id").
		WithArgs(0, 0, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	detail, err := repo.FindAtSlot(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	assert.Nil(t, detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlacementRepositoryClear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPlacementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM placements")).
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, repo.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
