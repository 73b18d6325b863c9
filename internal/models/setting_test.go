package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveSettingsFromMapAppliesValues(t *testing.T) {
	s := SolveSettingsFromMap(map[string]string{
		"max_daily_periods":        "7",
		"teacher_daily_max":        "5",
		"teacher_daily_min":        "1",
		"class_daily_max":          "6",
		"class_daily_min":          "2",
		"same_course_daily_max":    "3",
		"enforce_special_rooms":    "0",
		"prefer_block_consecutive": "true",
		"minimize_room_changes":    "0",
		"teacher_idle_preference":  "MAXIMIZE",
		"time_budget_seconds":      "42",
		"special_room_tokens":      "Lab, Atelier",
	})

	assert.Equal(t, 5, s.Days)
	assert.Equal(t, 7, s.Periods)
	assert.Equal(t, 5, s.TeacherDailyMax)
	assert.Equal(t, 1, s.TeacherDailyMin)
	assert.Equal(t, 6, s.ClassDailyMax)
	assert.Equal(t, 2, s.ClassDailyMin)
	assert.Equal(t, 3, s.SameCourseDaily)
	assert.False(t, s.EnforceSpecial)
	assert.True(t, s.PreferBlocks)
	assert.False(t, s.MinimizeRoomMoves)
	assert.Equal(t, "maximize", s.IdlePreference)
	assert.Equal(t, 42, s.TimeBudgetSeconds)
	assert.Equal(t, []string{"lab", "atelier"}, s.SpecialTokens)
}

func TestSolveSettingsFromMapKeepsDefaultsOnGarbage(t *testing.T) {
	s := SolveSettingsFromMap(map[string]string{
		"max_daily_periods":       "not-a-number",
		"teacher_idle_preference": "sideways",
		"special_room_tokens":     " , ",
	})

	d := DefaultSolveSettings()
	assert.Equal(t, d.Periods, s.Periods)
	assert.Equal(t, d.IdlePreference, s.IdlePreference)
	assert.Equal(t, d.SpecialTokens, s.SpecialTokens)
}

func TestPresentationSettingsFromMap(t *testing.T) {
	p := PresentationSettingsFromMap(map[string]string{
		"lesson_duration_minutes": "45",
		"break_duration_minutes":  "5",
		"day_start":               "09:00",
	})
	assert.Equal(t, 45, p.LessonMinutes)
	assert.Equal(t, 5, p.BreakMinutes)
	assert.Equal(t, "09:00", p.DayStart)
	assert.Equal(t, "12:00", p.LunchStart)
}

func TestClassLabel(t *testing.T) {
	assert.Equal(t, "10/A", Class{Name: "10", Section: "A"}.Label())
	assert.Equal(t, "Prep", Class{Name: "Prep"}.Label())
}

func TestRoomKindValid(t *testing.T) {
	assert.True(t, RoomKindNormal.Valid())
	assert.True(t, RoomKindSpecial.Valid())
	assert.False(t, RoomKind("garage").Valid())
}
