// Package catalog builds the validated, immutable snapshot a solve runs
// against. Loading resolves every reference, checks capacity invariants and
// computes the derived indices the solver needs; the snapshot is read-only
// from then on.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type classLister interface {
	List(ctx context.Context) ([]models.Class, error)
}

type teacherLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

type roomLister interface {
	List(ctx context.Context) ([]models.Room, error)
}

type assignmentLister interface {
	List(ctx context.Context) ([]models.Assignment, error)
}

type unavailabilityLister interface {
	ListAll(ctx context.Context) ([]models.UnavailabilityDetail, error)
}

type settingReader interface {
	Map(ctx context.Context) (map[string]string, error)
}

// TeacherDay keys per-teacher per-day indices.
type TeacherDay struct {
	TeacherID int64
	Day       int
}

// Catalog is the solver's input snapshot.
type Catalog struct {
	Settings models.SolveSettings

	Classes  []models.Class
	Teachers []models.Teacher
	Courses  []models.Course
	Rooms    []models.Room
	// Assignments are ordered by id so repeated solves over the same data
	// lay out decision variables identically.
	Assignments      []models.Assignment
	Unavailabilities []models.Unavailability

	ClassByID   map[int64]models.Class
	TeacherByID map[int64]models.Teacher
	CourseByID  map[int64]models.Course
	RoomByID    map[int64]models.Room

	AssignmentsByClass   map[int64][]int
	AssignmentsByTeacher map[int64][]int
	AssignmentsByCourse  map[int64][]int
	UnavailByTeacherDay  map[TeacherDay][]models.Unavailability
	RoomsByKind          map[models.RoomKind][]models.Room

	// Warnings are non-fatal pre-check findings, e.g. a class whose
	// assignable hours cannot reach class_daily_min on every day.
	Warnings []string
}

// Loader assembles catalogs from the store.
type Loader struct {
	classes          classLister
	teachers         teacherLister
	courses          courseLister
	rooms            roomLister
	assignments      assignmentLister
	unavailabilities unavailabilityLister
	settings         settingReader
	logger           *zap.Logger
}

// NewLoader wires the loader's store dependencies.
func NewLoader(
	classes classLister,
	teachers teacherLister,
	courses courseLister,
	rooms roomLister,
	assignments assignmentLister,
	unavailabilities unavailabilityLister,
	settings settingReader,
	logger *zap.Logger,
) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		classes:          classes,
		teachers:         teachers,
		courses:          courses,
		rooms:            rooms,
		assignments:      assignments,
		unavailabilities: unavailabilities,
		settings:         settings,
		logger:           logger,
	}
}

func dataErr(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrDataError, fmt.Sprintf(format, args...))
}

// Load reads, validates and indexes the current store state. The first
// violated invariant aborts the load with a DataError naming the offending
// entity.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	values, err := l.settings.Map(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	cat := &Catalog{Settings: models.SolveSettingsFromMap(values)}

	if cat.Classes, err = l.classes.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	if cat.Teachers, err = l.teachers.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	if cat.Courses, err = l.courses.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if cat.Rooms, err = l.rooms.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if cat.Assignments, err = l.assignments.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	windows, err := l.unavailabilities.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unavailabilities")
	}
	for _, w := range windows {
		cat.Unavailabilities = append(cat.Unavailabilities, w.Unavailability)
	}

	if len(cat.Classes) == 0 {
		return nil, dataErr("no classes defined")
	}
	if len(cat.Teachers) == 0 {
		return nil, dataErr("no teachers defined")
	}
	if len(cat.Courses) == 0 {
		return nil, dataErr("no courses defined")
	}
	if len(cat.Rooms) == 0 {
		return nil, dataErr("no rooms defined")
	}
	if len(cat.Assignments) == 0 {
		return nil, dataErr("no assignments defined")
	}

	sort.Slice(cat.Assignments, func(i, j int) bool { return cat.Assignments[i].ID < cat.Assignments[j].ID })

	cat.buildIndices()
	if err := cat.validate(); err != nil {
		return nil, err
	}

	for _, warning := range cat.Warnings {
		l.logger.Warn("catalog pre-check", zap.String("warning", warning))
	}
	l.logger.Info("catalog loaded",
		zap.Int("classes", len(cat.Classes)),
		zap.Int("teachers", len(cat.Teachers)),
		zap.Int("courses", len(cat.Courses)),
		zap.Int("rooms", len(cat.Rooms)),
		zap.Int("assignments", len(cat.Assignments)),
		zap.Int("unavailabilities", len(cat.Unavailabilities)),
	)
	return cat, nil
}

func (c *Catalog) buildIndices() {
	c.ClassByID = make(map[int64]models.Class, len(c.Classes))
	for _, v := range c.Classes {
		c.ClassByID[v.ID] = v
	}
	c.TeacherByID = make(map[int64]models.Teacher, len(c.Teachers))
	for _, v := range c.Teachers {
		c.TeacherByID[v.ID] = v
	}
	c.CourseByID = make(map[int64]models.Course, len(c.Courses))
	for _, v := range c.Courses {
		c.CourseByID[v.ID] = v
	}
	c.RoomByID = make(map[int64]models.Room, len(c.Rooms))
	c.RoomsByKind = make(map[models.RoomKind][]models.Room)
	for _, v := range c.Rooms {
		c.RoomByID[v.ID] = v
		c.RoomsByKind[v.Kind] = append(c.RoomsByKind[v.Kind], v)
	}

	c.AssignmentsByClass = make(map[int64][]int)
	c.AssignmentsByTeacher = make(map[int64][]int)
	c.AssignmentsByCourse = make(map[int64][]int)
	for i, a := range c.Assignments {
		c.AssignmentsByClass[a.ClassID] = append(c.AssignmentsByClass[a.ClassID], i)
		c.AssignmentsByTeacher[a.TeacherID] = append(c.AssignmentsByTeacher[a.TeacherID], i)
		c.AssignmentsByCourse[a.CourseID] = append(c.AssignmentsByCourse[a.CourseID], i)
	}

	c.UnavailByTeacherDay = make(map[TeacherDay][]models.Unavailability)
	for _, u := range c.Unavailabilities {
		key := TeacherDay{TeacherID: u.TeacherID, Day: u.Day}
		c.UnavailByTeacherDay[key] = append(c.UnavailByTeacherDay[key], u)
	}
}

func (c *Catalog) validate() error {
	s := c.Settings

	for _, a := range c.Assignments {
		if a.WeeklyHours <= 0 {
			return dataErr("assignment %d has non-positive weekly hours", a.ID)
		}
		if _, ok := c.CourseByID[a.CourseID]; !ok {
			return dataErr("assignment %d references missing course %d", a.ID, a.CourseID)
		}
		if _, ok := c.ClassByID[a.ClassID]; !ok {
			return dataErr("assignment %d references missing class %d", a.ID, a.ClassID)
		}
		if _, ok := c.TeacherByID[a.TeacherID]; !ok {
			return dataErr("assignment %d references missing teacher %d", a.ID, a.TeacherID)
		}
	}

	for _, class := range c.Classes {
		total := 0
		for _, idx := range c.AssignmentsByClass[class.ID] {
			total += c.Assignments[idx].WeeklyHours
		}
		if total > s.ClassDailyMax*s.Days {
			return dataErr("class %s has %d weekly hours, capacity is %d", class.Label(), total, s.ClassDailyMax*s.Days)
		}
		if total > 0 && total < s.ClassDailyMin*s.Days {
			c.Warnings = append(c.Warnings, fmt.Sprintf(
				"class %s has only %d assignable hours; class_daily_min %d over %d days needs %d",
				class.Label(), total, s.ClassDailyMin, s.Days, s.ClassDailyMin*s.Days))
		}
	}

	for _, teacher := range c.Teachers {
		total := 0
		for _, idx := range c.AssignmentsByTeacher[teacher.ID] {
			total += c.Assignments[idx].WeeklyHours
		}
		if total > s.TeacherDailyMax*s.Days {
			return dataErr("teacher %s has %d weekly hours, capacity is %d", teacher.FullName, total, s.TeacherDailyMax*s.Days)
		}
	}

	for _, u := range c.Unavailabilities {
		teacher, ok := c.TeacherByID[u.TeacherID]
		if !ok {
			return dataErr("unavailability %d references missing teacher %d", u.ID, u.TeacherID)
		}
		if u.StartPeriod >= u.EndPeriod {
			return dataErr("unavailability for teacher %s has empty period range [%d, %d)", teacher.FullName, u.StartPeriod, u.EndPeriod)
		}
		if u.Day < 0 || u.Day >= s.Days {
			return dataErr("unavailability for teacher %s has day %d outside [0, %d)", teacher.FullName, u.Day, s.Days)
		}
		if u.StartPeriod < 0 || u.EndPeriod > s.Periods {
			return dataErr("unavailability for teacher %s spans outside [0, %d)", teacher.FullName, s.Periods)
		}
	}

	return nil
}

// SpecialRoomReason says which rule flagged a course as special-room-bound.
type SpecialRoomReason string

const (
	SpecialRoomByFlag  SpecialRoomReason = "flag"
	SpecialRoomByToken SpecialRoomReason = "token"
	SpecialRoomNo      SpecialRoomReason = ""
)

// RequiresSpecialRoom applies the explicit course flag first, then the
// case-insensitive name-token rule from special_room_tokens.
func (c *Catalog) RequiresSpecialRoom(course models.Course) SpecialRoomReason {
	if course.RequiresSpecialRoom {
		return SpecialRoomByFlag
	}
	if matchesSpecialToken(course.Name, c.Settings.SpecialTokens) {
		return SpecialRoomByToken
	}
	return SpecialRoomNo
}
