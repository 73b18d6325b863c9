package solver

import (
	"fmt"

	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/pkg/cpsat"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

// decode walks the variable layout in allocation order and emits one
// placement per true decision variable, so equal models produce identical
// row order.
func (m *model) decode(sol cpsat.Solution) []models.Placement {
	s := m.cat.Settings
	var rows []models.Placement
	for a, assignment := range m.cat.Assignments {
		for k := range m.x[a] {
			for d := 0; d < s.Days; d++ {
				for p := 0; p < s.Periods; p++ {
					for r, room := range m.cat.Rooms {
						if !sol.Value(m.x[a][k][d][p][r]) {
							continue
						}
						roomID := room.ID
						rows = append(rows, models.Placement{
							ClassID:   assignment.ClassID,
							TeacherID: assignment.TeacherID,
							CourseID:  assignment.CourseID,
							RoomID:    &roomID,
							Day:       d,
							Period:    p,
						})
					}
				}
			}
		}
	}
	return rows
}

type slotKey struct {
	owner  int64
	day    int
	period int
}

// selfCheck verifies the decoded rows before anything touches the store: no
// two placements may share a (teacher, day, period), (class, day, period) or
// (room, day, period). A violation here is a solver defect, not an
// infeasibility.
func selfCheck(rows []models.Placement) error {
	teachers := make(map[slotKey]struct{}, len(rows))
	classes := make(map[slotKey]struct{}, len(rows))
	rooms := make(map[slotKey]struct{}, len(rows))

	for _, row := range rows {
		tk := slotKey{owner: row.TeacherID, day: row.Day, period: row.Period}
		if _, dup := teachers[tk]; dup {
			return defect("teacher %d double-booked at day %d period %d", row.TeacherID, row.Day, row.Period)
		}
		teachers[tk] = struct{}{}

		ck := slotKey{owner: row.ClassID, day: row.Day, period: row.Period}
		if _, dup := classes[ck]; dup {
			return defect("class %d double-booked at day %d period %d", row.ClassID, row.Day, row.Period)
		}
		classes[ck] = struct{}{}

		if row.RoomID != nil {
			rk := slotKey{owner: *row.RoomID, day: row.Day, period: row.Period}
			if _, dup := rooms[rk]; dup {
				return defect("room %d double-booked at day %d period %d", *row.RoomID, row.Day, row.Period)
			}
			rooms[rk] = struct{}{}
		}
	}
	return nil
}

func defect(format string, args ...interface{}) error {
	return appErrors.Wrap(fmt.Errorf(format, args...), appErrors.ErrDefect.Code, appErrors.ErrDefect.Status, appErrors.ErrDefect.Message)
}
