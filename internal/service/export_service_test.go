package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
)

func TestTimeLabelsShiftPastLunch(t *testing.T) {
	pres := models.PresentationSettings{
		LessonMinutes: 40,
		BreakMinutes:  10,
		DayStart:      "08:30",
		LunchStart:    "12:00",
		LunchEnd:      "13:00",
	}

	labels := timeLabels(pres, 8)
	assert.Len(t, labels, 8)
	assert.Equal(t, "08:30-09:10", labels[0])
	assert.Equal(t, "09:20-10:00", labels[1])
	// Period 5 would start 12:40, inside lunch, so it shifts by an hour.
	assert.Equal(t, "13:40-14:20", labels[5])
}

func TestTimeLabelsWithoutLunch(t *testing.T) {
	pres := models.PresentationSettings{
		LessonMinutes: 30,
		BreakMinutes:  0,
		DayStart:      "08:00",
		LunchStart:    "12:00",
		LunchEnd:      "12:00",
	}
	labels := timeLabels(pres, 3)
	assert.Equal(t, []string{"08:00-08:30", "08:30-09:00", "09:00-09:30"}, labels)
}

func TestDayHeader(t *testing.T) {
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, dayHeader(5))
}

func TestToExportGridFlattensCells(t *testing.T) {
	roomName := "R1"
	grid := &dto.ScheduleGrid{
		Title:      "Class 10/A",
		Days:       2,
		Periods:    2,
		TimeLabels: []string{"08:30-09:10", "09:20-10:00"},
		Cells: [][]dto.GridCell{
			{{PlacementID: 1, CourseName: "Math", TeacherName: "T1", RoomName: roomName}, {}},
			{{}, {PlacementID: 2, CourseName: "Physics Lab", TeacherName: "T2", RoomName: "Lab1"}},
		},
	}

	out := toExportGrid(grid)
	assert.Equal(t, "Class 10/A", out.Title)
	assert.Equal(t, []string{"Monday", "Tuesday"}, out.Days)
	assert.Equal(t, "Math\nT1\nR1", out.Cells[0][0])
	assert.Empty(t, out.Cells[0][1])
	assert.Equal(t, "Physics Lab\nT2\nLab1", out.Cells[1][1])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "class-10-a.csv", fileName("Class 10/A", "csv"))
	assert.Equal(t, "schedule.pdf", fileName("///", "pdf"))
}
