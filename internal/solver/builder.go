package solver

import (
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/catalog"
	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/pkg/cpsat"
)

// buildOptions toggle constraint families that can be relaxed between
// attempts.
type buildOptions struct {
	blockAdjacency bool
}

// model holds the CP-SAT formulation for one catalog. The primary decision
// variable x[a][k][d][p][r] is true when hour-copy k of assignment a is
// taught on day d, period p, in room r. Variables are allocated in
// (assignment, hour-copy, day, period, room) order; with assignments sorted
// by id and rooms in the store's name order the layout is identical across
// runs, which makes repeated solves byte-identical.
type model struct {
	cat  *catalog.Catalog
	sat  *cpsat.Model
	opts buildOptions

	x [][][][][]cpsat.Lit

	// busy[t][d][p] mirrors "teacher t teaches at (d,p)"; tied in both
	// directions so the objective chains stay exact.
	busy      map[int64][][]cpsat.Lit
	teacherID []int64
}

func buildModel(cat *catalog.Catalog, opts buildOptions, logger *zap.Logger) *model {
	m := &model{
		cat:  cat,
		sat:  cpsat.NewModel(),
		opts: opts,
		busy: make(map[int64][][]cpsat.Lit, len(cat.Teachers)),
	}

	m.allocateVariables()
	m.addCoverage()
	m.addTeacherBusy()
	m.addTeacherNonOverlap()
	m.addClassNonOverlap()
	m.addRoomNonOverlap()
	m.addUnavailability(logger)
	m.addTeacherDailyBounds()
	m.addClassDailyBounds()
	m.addSameCourseDailyCap()
	if cat.Settings.EnforceSpecial {
		m.addSpecialRooms(logger)
	}
	if opts.blockAdjacency {
		m.addBlockAdjacency()
	}
	m.addObjective()

	logger.Info("model built",
		zap.Int("variables", m.sat.NumVars()),
		zap.Int("constraints", m.sat.NumConstraints()),
		zap.Bool("block_adjacency", opts.blockAdjacency),
	)
	return m
}

func (m *model) allocateVariables() {
	s := m.cat.Settings
	m.x = make([][][][][]cpsat.Lit, len(m.cat.Assignments))
	for a, assignment := range m.cat.Assignments {
		m.x[a] = make([][][][]cpsat.Lit, assignment.WeeklyHours)
		for k := 0; k < assignment.WeeklyHours; k++ {
			m.x[a][k] = make([][][]cpsat.Lit, s.Days)
			for d := 0; d < s.Days; d++ {
				m.x[a][k][d] = make([][]cpsat.Lit, s.Periods)
				for p := 0; p < s.Periods; p++ {
					m.x[a][k][d][p] = make([]cpsat.Lit, len(m.cat.Rooms))
					for r := range m.cat.Rooms {
						m.x[a][k][d][p][r] = m.sat.NewBool()
					}
				}
			}
		}
	}
}

// addCoverage places each required lesson-hour exactly once.
func (m *model) addCoverage() {
	s := m.cat.Settings
	for a, assignment := range m.cat.Assignments {
		for k := 0; k < assignment.WeeklyHours; k++ {
			lits := make([]cpsat.Lit, 0, s.Days*s.Periods*len(m.cat.Rooms))
			for d := 0; d < s.Days; d++ {
				for p := 0; p < s.Periods; p++ {
					lits = append(lits, m.x[a][k][d][p]...)
				}
			}
			m.sat.AddExactlyOne(lits)
		}
	}
}

// teacherSlotLits collects every variable that would put the teacher in front
// of a class at (d, p).
func (m *model) teacherSlotLits(teacherID int64, d, p int) []cpsat.Lit {
	var lits []cpsat.Lit
	for _, a := range m.cat.AssignmentsByTeacher[teacherID] {
		for k := range m.x[a] {
			lits = append(lits, m.x[a][k][d][p]...)
		}
	}
	return lits
}

func (m *model) classSlotLits(classID int64, d, p int) []cpsat.Lit {
	var lits []cpsat.Lit
	for _, a := range m.cat.AssignmentsByClass[classID] {
		for k := range m.x[a] {
			lits = append(lits, m.x[a][k][d][p]...)
		}
	}
	return lits
}

// addTeacherBusy allocates the busy indicator per (teacher, day, period) and
// ties it to the slot sum in both directions.
func (m *model) addTeacherBusy() {
	s := m.cat.Settings
	for _, teacher := range m.cat.Teachers {
		grid := make([][]cpsat.Lit, s.Days)
		for d := 0; d < s.Days; d++ {
			grid[d] = make([]cpsat.Lit, s.Periods)
			for p := 0; p < s.Periods; p++ {
				busy := m.sat.NewBool()
				grid[d][p] = busy
				lits := m.teacherSlotLits(teacher.ID, d, p)
				if len(lits) == 0 {
					m.sat.Forbid(busy)
					continue
				}
				down := make([]cpsat.Lit, 0, len(lits)+1)
				down = append(down, busy.Neg())
				for _, l := range lits {
					m.sat.AddImplication(l, busy)
					down = append(down, l)
				}
				m.sat.AddClause(down...)
			}
		}
		m.busy[teacher.ID] = grid
		m.teacherID = append(m.teacherID, teacher.ID)
	}
}

// addTeacherNonOverlap keeps a teacher in at most one room at a time.
func (m *model) addTeacherNonOverlap() {
	s := m.cat.Settings
	for _, teacher := range m.cat.Teachers {
		for d := 0; d < s.Days; d++ {
			for p := 0; p < s.Periods; p++ {
				if lits := m.teacherSlotLits(teacher.ID, d, p); len(lits) > 1 {
					m.sat.AddAtMostOne(lits)
				}
			}
		}
	}
}

// addClassNonOverlap keeps a class in at most one lesson at a time.
func (m *model) addClassNonOverlap() {
	s := m.cat.Settings
	for _, class := range m.cat.Classes {
		for d := 0; d < s.Days; d++ {
			for p := 0; p < s.Periods; p++ {
				if lits := m.classSlotLits(class.ID, d, p); len(lits) > 1 {
					m.sat.AddAtMostOne(lits)
				}
			}
		}
	}
}

// addRoomNonOverlap keeps a room hosting at most one lesson at a time.
func (m *model) addRoomNonOverlap() {
	s := m.cat.Settings
	for r := range m.cat.Rooms {
		for d := 0; d < s.Days; d++ {
			for p := 0; p < s.Periods; p++ {
				var lits []cpsat.Lit
				for a := range m.x {
					for k := range m.x[a] {
						lits = append(lits, m.x[a][k][d][p][r])
					}
				}
				if len(lits) > 1 {
					m.sat.AddAtMostOne(lits)
				}
			}
		}
	}
}

// addUnavailability zeroes every variable inside a blocked window.
func (m *model) addUnavailability(logger *zap.Logger) {
	s := m.cat.Settings
	for _, u := range m.cat.Unavailabilities {
		if u.Day < 0 || u.Day >= s.Days {
			continue
		}
		for p := u.StartPeriod; p < u.EndPeriod && p < s.Periods; p++ {
			if p < 0 {
				continue
			}
			for _, l := range m.teacherSlotLits(u.TeacherID, u.Day, p) {
				m.sat.Forbid(l)
			}
		}
		logger.Debug("unavailability applied",
			zap.Int64("teacher_id", u.TeacherID),
			zap.Int("day", u.Day),
			zap.Int("start", u.StartPeriod),
			zap.Int("end", u.EndPeriod),
		)
	}
}

// addTeacherDailyBounds caps daily teaching load and, on days the teacher
// works at all, enforces the daily minimum through a works indicator.
func (m *model) addTeacherDailyBounds() {
	s := m.cat.Settings
	for _, teacher := range m.cat.Teachers {
		for d := 0; d < s.Days; d++ {
			var lits []cpsat.Lit
			for p := 0; p < s.Periods; p++ {
				lits = append(lits, m.teacherSlotLits(teacher.ID, d, p)...)
			}
			if len(lits) == 0 {
				continue
			}

			m.sat.AddSumLE(lits, s.TeacherDailyMax)

			if s.TeacherDailyMin <= 0 {
				continue
			}
			works := m.sat.NewBool()
			busyRow := m.busy[teacher.ID][d]
			down := make([]cpsat.Lit, 0, s.Periods+1)
			down = append(down, works.Neg())
			for p := 0; p < s.Periods; p++ {
				m.sat.AddImplication(busyRow[p], works)
				down = append(down, busyRow[p])
			}
			m.sat.AddClause(down...)

			// sum(x) + min·(¬works) ≥ min  ⇔  sum(x) ≥ min·works
			weighted := make([]cpsat.Lit, 0, len(lits)+1)
			weights := make([]int, 0, len(lits)+1)
			for _, l := range lits {
				weighted = append(weighted, l)
				weights = append(weights, 1)
			}
			weighted = append(weighted, works.Neg())
			weights = append(weights, s.TeacherDailyMin)
			m.sat.AddWeightedGE(weighted, weights, s.TeacherDailyMin)
		}
	}
}

// addClassDailyBounds enforces the unconditional per-day class window.
func (m *model) addClassDailyBounds() {
	s := m.cat.Settings
	for _, class := range m.cat.Classes {
		if len(m.cat.AssignmentsByClass[class.ID]) == 0 {
			continue
		}
		for d := 0; d < s.Days; d++ {
			var lits []cpsat.Lit
			for p := 0; p < s.Periods; p++ {
				lits = append(lits, m.classSlotLits(class.ID, d, p)...)
			}
			m.sat.AddSumLE(lits, s.ClassDailyMax)
			m.sat.AddSumGE(lits, s.ClassDailyMin)
		}
	}
}

// addSameCourseDailyCap limits how often one course repeats for a class in a
// single day.
func (m *model) addSameCourseDailyCap() {
	s := m.cat.Settings
	for _, class := range m.cat.Classes {
		byCourse := make(map[int64][]int)
		for _, a := range m.cat.AssignmentsByClass[class.ID] {
			courseID := m.cat.Assignments[a].CourseID
			byCourse[courseID] = append(byCourse[courseID], a)
		}
		for _, course := range m.cat.Courses {
			group, ok := byCourse[course.ID]
			if !ok {
				continue
			}
			for d := 0; d < s.Days; d++ {
				var lits []cpsat.Lit
				for _, a := range group {
					for k := range m.x[a] {
						for p := 0; p < s.Periods; p++ {
							lits = append(lits, m.x[a][k][d][p]...)
						}
					}
				}
				m.sat.AddSumLE(lits, s.SameCourseDaily)
			}
		}
	}
}

// addSpecialRooms bans normal rooms for courses flagged as lab or workshop,
// logging which recognition rule fired.
func (m *model) addSpecialRooms(logger *zap.Logger) {
	s := m.cat.Settings
	normalRooms := make([]int, 0, len(m.cat.Rooms))
	for r, room := range m.cat.Rooms {
		if room.Kind == models.RoomKindNormal {
			normalRooms = append(normalRooms, r)
		}
	}
	if len(normalRooms) == 0 {
		return
	}

	for a, assignment := range m.cat.Assignments {
		course := m.cat.CourseByID[assignment.CourseID]
		reason := m.cat.RequiresSpecialRoom(course)
		if reason == catalog.SpecialRoomNo {
			continue
		}
		logger.Info("special room required",
			zap.String("course", course.Name),
			zap.String("matched_by", string(reason)),
		)
		for k := range m.x[a] {
			for d := 0; d < s.Days; d++ {
				for p := 0; p < s.Periods; p++ {
					for _, r := range normalRooms {
						m.sat.Forbid(m.x[a][k][d][p][r])
					}
				}
			}
		}
	}
}

// addBlockAdjacency chains hour-copies of multi-hour assignments into a
// consecutive same-day same-room block: copy k at (d,p,r) forces copy k+1 to
// (d,p+1,r), and non-final copies may not sit in the last period where no
// successor slot exists.
func (m *model) addBlockAdjacency() {
	s := m.cat.Settings
	for a, assignment := range m.cat.Assignments {
		if assignment.WeeklyHours < 2 {
			continue
		}
		for k := 0; k < assignment.WeeklyHours-1; k++ {
			for d := 0; d < s.Days; d++ {
				for r := range m.cat.Rooms {
					for p := 0; p < s.Periods-1; p++ {
						m.sat.AddImplication(m.x[a][k][d][p][r], m.x[a][k+1][d][p+1][r])
					}
					m.sat.Forbid(m.x[a][k][d][s.Periods-1][r])
				}
			}
		}
	}
}
