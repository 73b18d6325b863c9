package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type fakeStore struct {
	classes          []models.Class
	teachers         []models.Teacher
	courses          []models.Course
	rooms            []models.Room
	assignments      []models.Assignment
	unavailabilities []models.UnavailabilityDetail
	settings         map[string]string
}

type classListerFunc fakeStore

func (f *classListerFunc) List(context.Context) ([]models.Class, error) { return f.classes, nil }

type teacherListerFunc fakeStore

func (f *teacherListerFunc) List(context.Context) ([]models.Teacher, error) { return f.teachers, nil }

type courseListerFunc fakeStore

func (f *courseListerFunc) List(context.Context) ([]models.Course, error) { return f.courses, nil }

type roomListerFunc fakeStore

func (f *roomListerFunc) List(context.Context) ([]models.Room, error) { return f.rooms, nil }

type assignmentListerFunc fakeStore

func (f *assignmentListerFunc) List(context.Context) ([]models.Assignment, error) {
	return f.assignments, nil
}

func (f *fakeStore) ListAll(context.Context) ([]models.UnavailabilityDetail, error) {
	return f.unavailabilities, nil
}

func (f *fakeStore) Map(context.Context) (map[string]string, error) {
	if f.settings == nil {
		return map[string]string{}, nil
	}
	return f.settings, nil
}

func newLoader(f *fakeStore) *Loader {
	return NewLoader(
		(*classListerFunc)(f),
		(*teacherListerFunc)(f),
		(*courseListerFunc)(f),
		(*roomListerFunc)(f),
		(*assignmentListerFunc)(f),
		f,
		f,
		zap.NewNop(),
	)
}

func minimalStore() *fakeStore {
	return &fakeStore{
		classes:     []models.Class{{ID: 1, Name: "10", Section: "A"}},
		teachers:    []models.Teacher{{ID: 1, FullName: "T1", Subject: "Math"}},
		courses:     []models.Course{{ID: 1, Name: "Math", WeeklyHours: 2}},
		rooms:       []models.Room{{ID: 1, Name: "R1", Kind: models.RoomKindNormal}},
		assignments: []models.Assignment{{ID: 1, CourseID: 1, ClassID: 1, TeacherID: 1, WeeklyHours: 2}},
		settings:    map[string]string{"class_daily_min": "0"},
	}
}

func TestLoaderBuildsIndices(t *testing.T) {
	store := minimalStore()
	cat, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, cat.Assignments, 1)
	assert.Equal(t, []int{0}, cat.AssignmentsByClass[1])
	assert.Equal(t, []int{0}, cat.AssignmentsByTeacher[1])
	assert.Equal(t, []int{0}, cat.AssignmentsByCourse[1])
	assert.Len(t, cat.RoomsByKind[models.RoomKindNormal], 1)
	assert.Equal(t, 5, cat.Settings.Days)
	assert.Equal(t, 8, cat.Settings.Periods)
}

func TestLoaderRejectsEmptySets(t *testing.T) {
	store := minimalStore()
	store.assignments = nil
	_, err := newLoader(store).Load(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDataError))
}

func TestLoaderRejectsMissingReference(t *testing.T) {
	store := minimalStore()
	store.assignments = []models.Assignment{{ID: 1, CourseID: 9, ClassID: 1, TeacherID: 1, WeeklyHours: 2}}
	_, err := newLoader(store).Load(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDataError))
	assert.Contains(t, appErrors.FromError(err).Message, "course")
}

func TestLoaderRejectsOverloadedClass(t *testing.T) {
	store := minimalStore()
	store.courses = append(store.courses, models.Course{ID: 2, Name: "Physics", WeeklyHours: 40})
	store.assignments = append(store.assignments,
		models.Assignment{ID: 2, CourseID: 2, ClassID: 1, TeacherID: 1, WeeklyHours: 39})
	_, err := newLoader(store).Load(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDataError))
}

func TestLoaderRejectsBadUnavailability(t *testing.T) {
	store := minimalStore()
	store.unavailabilities = []models.UnavailabilityDetail{
		{Unavailability: models.Unavailability{ID: 1, TeacherID: 1, Day: 0, StartPeriod: 4, EndPeriod: 4}},
	}
	_, err := newLoader(store).Load(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDataError))

	store.unavailabilities = []models.UnavailabilityDetail{
		{Unavailability: models.Unavailability{ID: 1, TeacherID: 1, Day: 9, StartPeriod: 0, EndPeriod: 2}},
	}
	_, err = newLoader(store).Load(context.Background())
	require.Error(t, err)
}

func TestLoaderWarnsOnThinClass(t *testing.T) {
	store := minimalStore()
	store.settings = map[string]string{"class_daily_min": "4"}
	cat, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Warnings, 1)
	assert.Contains(t, cat.Warnings[0], "10/A")
}

func TestRequiresSpecialRoom(t *testing.T) {
	store := minimalStore()
	cat, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SpecialRoomNo, cat.RequiresSpecialRoom(models.Course{Name: "History"}))
	assert.Equal(t, SpecialRoomByToken, cat.RequiresSpecialRoom(models.Course{Name: "Physics Lab"}))
	assert.Equal(t, SpecialRoomByToken, cat.RequiresSpecialRoom(models.Course{Name: "Kimya Laboratuvar"}))
	assert.Equal(t, SpecialRoomByFlag, cat.RequiresSpecialRoom(models.Course{Name: "History", RequiresSpecialRoom: true}))
}
