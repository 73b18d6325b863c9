package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/catalog"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type stubLoader struct {
	cat *catalog.Catalog
	err error
}

func (s *stubLoader) Load(context.Context) (*catalog.Catalog, error) {
	return s.cat, s.err
}

type captureSink struct {
	rows   []models.Placement
	called int
}

func (c *captureSink) ReplaceAll(_ context.Context, rows []models.Placement) error {
	c.rows = rows
	c.called++
	return nil
}

// makeCatalog assembles a catalog snapshot with indices the way the loader
// would, letting tests shape scenarios directly.
func makeCatalog(
	settings models.SolveSettings,
	classes []models.Class,
	teachers []models.Teacher,
	courses []models.Course,
	rooms []models.Room,
	assignments []models.Assignment,
	unavailabilities []models.Unavailability,
) *catalog.Catalog {
	cat := &catalog.Catalog{
		Settings:         settings,
		Classes:          classes,
		Teachers:         teachers,
		Courses:          courses,
		Rooms:            rooms,
		Assignments:      assignments,
		Unavailabilities: unavailabilities,

		ClassByID:            map[int64]models.Class{},
		TeacherByID:          map[int64]models.Teacher{},
		CourseByID:           map[int64]models.Course{},
		RoomByID:             map[int64]models.Room{},
		AssignmentsByClass:   map[int64][]int{},
		AssignmentsByTeacher: map[int64][]int{},
		AssignmentsByCourse:  map[int64][]int{},
		UnavailByTeacherDay:  map[catalog.TeacherDay][]models.Unavailability{},
		RoomsByKind:          map[models.RoomKind][]models.Room{},
	}
	for _, v := range classes {
		cat.ClassByID[v.ID] = v
	}
	for _, v := range teachers {
		cat.TeacherByID[v.ID] = v
	}
	for _, v := range courses {
		cat.CourseByID[v.ID] = v
	}
	for _, v := range rooms {
		cat.RoomByID[v.ID] = v
		cat.RoomsByKind[v.Kind] = append(cat.RoomsByKind[v.Kind], v)
	}
	for i, a := range assignments {
		cat.AssignmentsByClass[a.ClassID] = append(cat.AssignmentsByClass[a.ClassID], i)
		cat.AssignmentsByTeacher[a.TeacherID] = append(cat.AssignmentsByTeacher[a.TeacherID], i)
		cat.AssignmentsByCourse[a.CourseID] = append(cat.AssignmentsByCourse[a.CourseID], i)
	}
	for _, u := range unavailabilities {
		key := catalog.TeacherDay{TeacherID: u.TeacherID, Day: u.Day}
		cat.UnavailByTeacherDay[key] = append(cat.UnavailByTeacherDay[key], u)
	}
	return cat
}

func relaxedSettings() models.SolveSettings {
	s := models.DefaultSolveSettings()
	s.ClassDailyMin = 0
	s.TeacherDailyMin = 0
	s.TimeBudgetSeconds = 30
	return s
}

func trivialCatalog(settings models.SolveSettings) *catalog.Catalog {
	return makeCatalog(settings,
		[]models.Class{{ID: 1, Name: "10", Section: "A"}},
		[]models.Teacher{{ID: 1, FullName: "T1", Subject: "Math"}},
		[]models.Course{{ID: 1, Name: "Math", WeeklyHours: 2}},
		[]models.Room{{ID: 1, Name: "R1", Kind: models.RoomKindNormal}},
		[]models.Assignment{{ID: 1, CourseID: 1, ClassID: 1, TeacherID: 1, WeeklyHours: 2}},
		nil,
	)
}

func runSolver(t *testing.T, cat *catalog.Catalog) (*Result, *captureSink, error) {
	t.Helper()
	sink := &captureSink{}
	s := New(&stubLoader{cat: cat}, sink, zap.NewNop())
	result, err := s.Run(context.Background(), Options{BudgetOverride: 30 * time.Second})
	return result, sink, err
}

// checkHardProperties asserts the universal feasibility properties on a
// solved placement set.
func checkHardProperties(t *testing.T, cat *catalog.Catalog, rows []models.Placement) {
	t.Helper()
	s := cat.Settings

	type key struct {
		owner  int64
		day    int
		period int
	}
	teacherSlots := map[key]int{}
	classSlots := map[key]int{}
	roomSlots := map[key]int{}
	teacherDay := map[key]int{}
	classDay := map[key]int{}
	classCourseDay := map[[3]int64]int{}

	for _, row := range rows {
		assert.GreaterOrEqual(t, row.Day, 0)
		assert.Less(t, row.Day, s.Days)
		assert.GreaterOrEqual(t, row.Period, 0)
		assert.Less(t, row.Period, s.Periods)

		teacherSlots[key{row.TeacherID, row.Day, row.Period}]++
		classSlots[key{row.ClassID, row.Day, row.Period}]++
		require.NotNil(t, row.RoomID)
		roomSlots[key{*row.RoomID, row.Day, row.Period}]++
		teacherDay[key{owner: row.TeacherID, day: row.Day}]++
		classDay[key{owner: row.ClassID, day: row.Day}]++
		classCourseDay[[3]int64{row.ClassID, row.CourseID, int64(row.Day)}]++
	}

	for _, count := range teacherSlots {
		assert.LessOrEqual(t, count, 1, "teacher overlap")
	}
	for _, count := range classSlots {
		assert.LessOrEqual(t, count, 1, "class overlap")
	}
	for _, count := range roomSlots {
		assert.LessOrEqual(t, count, 1, "room overlap")
	}

	for _, a := range cat.Assignments {
		matched := 0
		for _, row := range rows {
			if row.ClassID == a.ClassID && row.TeacherID == a.TeacherID && row.CourseID == a.CourseID {
				matched++
			}
		}
		assert.Equal(t, a.WeeklyHours, matched, "coverage for assignment %d", a.ID)
	}

	for _, u := range cat.Unavailabilities {
		for _, row := range rows {
			if row.TeacherID == u.TeacherID && row.Day == u.Day {
				assert.False(t, row.Period >= u.StartPeriod && row.Period < u.EndPeriod,
					"placement inside unavailability window")
			}
		}
	}

	for _, count := range teacherDay {
		assert.LessOrEqual(t, count, s.TeacherDailyMax)
		if s.TeacherDailyMin > 0 && count > 0 {
			assert.GreaterOrEqual(t, count, s.TeacherDailyMin)
		}
	}
	for _, count := range classDay {
		assert.LessOrEqual(t, count, s.ClassDailyMax)
	}
	for _, class := range cat.Classes {
		if len(cat.AssignmentsByClass[class.ID]) == 0 {
			continue
		}
		for d := 0; d < s.Days; d++ {
			assert.GreaterOrEqual(t, classDay[key{owner: class.ID, day: d}], s.ClassDailyMin)
		}
	}
	for _, count := range classCourseDay {
		assert.LessOrEqual(t, count, s.SameCourseDaily)
	}
}

func TestSolveTrivialFeasible(t *testing.T) {
	cat := trivialCatalog(relaxedSettings())
	result, sink, err := runSolver(t, cat)
	require.NoError(t, err)
	require.Equal(t, 1, sink.called)
	require.Len(t, result.Placements, 2)

	checkHardProperties(t, cat, result.Placements)
	for _, row := range result.Placements {
		assert.Equal(t, int64(1), row.ClassID)
		assert.Equal(t, int64(1), row.TeacherID)
		assert.Equal(t, int64(1), row.CourseID)
		require.NotNil(t, row.RoomID)
		assert.Equal(t, int64(1), *row.RoomID)
	}

	// prefer_block_consecutive keeps both hours adjacent in one room.
	a, b := result.Placements[0], result.Placements[1]
	assert.Equal(t, a.Day, b.Day)
	assert.Equal(t, 1, abs(a.Period-b.Period))
	assert.False(t, result.Stats.BlockRelaxed)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSolveUnavailabilityDisplacesDay(t *testing.T) {
	cat := trivialCatalog(relaxedSettings())
	cat.Unavailabilities = []models.Unavailability{{ID: 1, TeacherID: 1, Day: 0, StartPeriod: 0, EndPeriod: 8}}

	result, _, err := runSolver(t, cat)
	require.NoError(t, err)
	checkHardProperties(t, cat, result.Placements)
	for _, row := range result.Placements {
		assert.NotEqual(t, 0, row.Day, "day 0 is fully blocked")
	}
}

func TestSolveInfeasibleLeavesStoreUntouched(t *testing.T) {
	cat := trivialCatalog(relaxedSettings())
	// Block the teacher's entire week; coverage cannot hold.
	for d := 0; d < cat.Settings.Days; d++ {
		cat.Unavailabilities = append(cat.Unavailabilities,
			models.Unavailability{ID: int64(d + 1), TeacherID: 1, Day: d, StartPeriod: 0, EndPeriod: 8})
	}

	_, sink, err := runSolver(t, cat)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInfeasible))
	assert.Zero(t, sink.called, "placement table must stay untouched")
}

func TestSolveSpecialRoomEnforcement(t *testing.T) {
	settings := relaxedSettings()
	cat := makeCatalog(settings,
		[]models.Class{{ID: 1, Name: "10", Section: "A"}},
		[]models.Teacher{{ID: 1, FullName: "T1", Subject: "Physics"}},
		[]models.Course{{ID: 1, Name: "Physics Lab", WeeklyHours: 2}},
		[]models.Room{
			{ID: 1, Name: "Lab1", Kind: models.RoomKindSpecial},
			{ID: 2, Name: "R1", Kind: models.RoomKindNormal},
		},
		[]models.Assignment{{ID: 1, CourseID: 1, ClassID: 1, TeacherID: 1, WeeklyHours: 2}},
		nil,
	)

	result, _, err := runSolver(t, cat)
	require.NoError(t, err)
	checkHardProperties(t, cat, result.Placements)
	for _, row := range result.Placements {
		require.NotNil(t, row.RoomID)
		assert.Equal(t, int64(1), *row.RoomID, "lab course must land in the special room")
	}
}

func TestSolveIdleMinimization(t *testing.T) {
	settings := relaxedSettings()
	cat := makeCatalog(settings,
		[]models.Class{
			{ID: 1, Name: "10", Section: "A"},
			{ID: 2, Name: "10", Section: "B"},
		},
		[]models.Teacher{{ID: 1, FullName: "T1", Subject: "Math"}},
		[]models.Course{{ID: 1, Name: "Math", WeeklyHours: 2}},
		[]models.Room{
			{ID: 1, Name: "R1", Kind: models.RoomKindNormal},
			{ID: 2, Name: "R2", Kind: models.RoomKindNormal},
		},
		[]models.Assignment{
			{ID: 1, CourseID: 1, ClassID: 1, TeacherID: 1, WeeklyHours: 2},
			{ID: 2, CourseID: 1, ClassID: 2, TeacherID: 1, WeeklyHours: 2},
		},
		nil,
	)

	result, _, err := runSolver(t, cat)
	require.NoError(t, err)
	checkHardProperties(t, cat, result.Placements)

	// Idle cost zero: within each day the teacher's periods are contiguous.
	byDay := map[int][]int{}
	for _, row := range result.Placements {
		byDay[row.Day] = append(byDay[row.Day], row.Period)
	}
	idle := 0
	for _, periods := range byDay {
		first, last := periods[0], periods[0]
		for _, p := range periods {
			if p < first {
				first = p
			}
			if p > last {
				last = p
			}
		}
		idle += last - first + 1 - len(periods)
	}
	assert.Zero(t, idle, "idle minimization should leave no within-day gaps")
}

func TestSolveDeterministic(t *testing.T) {
	first, _, err := runSolver(t, trivialCatalog(relaxedSettings()))
	require.NoError(t, err)
	second, _, err := runSolver(t, trivialCatalog(relaxedSettings()))
	require.NoError(t, err)

	require.Equal(t, len(first.Placements), len(second.Placements))
	for i := range first.Placements {
		a, b := first.Placements[i], second.Placements[i]
		assert.Equal(t, a.ClassID, b.ClassID)
		assert.Equal(t, a.TeacherID, b.TeacherID)
		assert.Equal(t, a.CourseID, b.CourseID)
		assert.Equal(t, a.Day, b.Day)
		assert.Equal(t, a.Period, b.Period)
		require.NotNil(t, a.RoomID)
		require.NotNil(t, b.RoomID)
		assert.Equal(t, *a.RoomID, *b.RoomID)
	}
}

func TestSolveHonoursDailyMinimums(t *testing.T) {
	settings := models.DefaultSolveSettings()
	settings.TimeBudgetSeconds = 30
	settings.ClassDailyMin = 1
	settings.TeacherDailyMin = 2
	settings.PreferBlocks = false

	// 5 days × at least 1 lesson needs ≥5 hours; give the class 10.
	cat := makeCatalog(settings,
		[]models.Class{{ID: 1, Name: "11", Section: "A"}},
		[]models.Teacher{{ID: 1, FullName: "T1", Subject: "Math"}},
		[]models.Course{
			{ID: 1, Name: "Math", WeeklyHours: 6},
			{ID: 2, Name: "History", WeeklyHours: 4},
		},
		[]models.Room{{ID: 1, Name: "R1", Kind: models.RoomKindNormal}},
		[]models.Assignment{
			{ID: 1, CourseID: 1, ClassID: 1, TeacherID: 1, WeeklyHours: 6},
			{ID: 2, CourseID: 2, ClassID: 1, TeacherID: 1, WeeklyHours: 4},
		},
		nil,
	)

	result, _, err := runSolver(t, cat)
	require.NoError(t, err)
	checkHardProperties(t, cat, result.Placements)
}

func TestSolveCancelledBeforeStart(t *testing.T) {
	sink := &captureSink{}
	s := New(&stubLoader{cat: trivialCatalog(relaxedSettings())}, sink, zap.NewNop())

	flag := &Flag{}
	flag.Set()
	_, err := s.Run(context.Background(), Options{BudgetOverride: 5 * time.Second, Cancel: flag})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInterrupted))
	assert.Zero(t, sink.called)
}

func TestSolveProgressIsMonotonic(t *testing.T) {
	progress := make(chan Progress, 32)
	sink := &captureSink{}
	s := New(&stubLoader{cat: trivialCatalog(relaxedSettings())}, sink, zap.NewNop())

	_, err := s.Run(context.Background(), Options{BudgetOverride: 30 * time.Second, Progress: progress})
	require.NoError(t, err)
	close(progress)

	last := -1
	for update := range progress {
		assert.GreaterOrEqual(t, update.Percent, last)
		last = update.Percent
	}
	assert.Equal(t, 100, last)
}
