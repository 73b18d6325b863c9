package models

import (
	"strconv"
	"strings"
)

// Setting is one key/value row of the settings table.
type Setting struct {
	ID    int64  `db:"id" json:"id"`
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// SolveSettings is the typed snapshot of every tunable the solver reads. It
// is loaded once per solve and treated as read-only for its duration.
type SolveSettings struct {
	Days              int
	Periods           int
	MaxWeeklyPeriods  int
	TeacherDailyMax   int
	TeacherDailyMin   int
	ClassDailyMax     int
	ClassDailyMin     int
	SameCourseDaily   int
	EnforceSpecial    bool
	PreferBlocks      bool
	BlockMax          int
	IdlePreference    string
	MinimizeRoomMoves bool
	TimeBudgetSeconds int
	SpecialTokens     []string
}

// DefaultSolveSettings mirrors the seeded settings defaults.
func DefaultSolveSettings() SolveSettings {
	return SolveSettings{
		Days:              5,
		Periods:           8,
		MaxWeeklyPeriods:  40,
		TeacherDailyMax:   6,
		TeacherDailyMin:   2,
		ClassDailyMax:     8,
		ClassDailyMin:     4,
		SameCourseDaily:   2,
		EnforceSpecial:    true,
		PreferBlocks:      true,
		BlockMax:          2,
		IdlePreference:    "minimize",
		MinimizeRoomMoves: true,
		TimeBudgetSeconds: 300,
		SpecialTokens:     []string{"lab", "laboratuvar", "workshop"},
	}
}

// SolveSettingsFromMap applies stored string values over the defaults.
// Unparseable values keep their default.
func SolveSettingsFromMap(values map[string]string) SolveSettings {
	s := DefaultSolveSettings()

	getInt := func(key string, dst *int) {
		if raw, ok := values[key]; ok {
			if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				*dst = v
			}
		}
	}
	getBool := func(key string, dst *bool) {
		if raw, ok := values[key]; ok {
			*dst = strings.TrimSpace(raw) == "1" || strings.EqualFold(raw, "true")
		}
	}

	getInt("max_daily_periods", &s.Periods)
	getInt("max_weekly_periods", &s.MaxWeeklyPeriods)
	getInt("teacher_daily_max", &s.TeacherDailyMax)
	getInt("teacher_daily_min", &s.TeacherDailyMin)
	getInt("class_daily_max", &s.ClassDailyMax)
	getInt("class_daily_min", &s.ClassDailyMin)
	getInt("same_course_daily_max", &s.SameCourseDaily)
	getInt("block_max", &s.BlockMax)
	getInt("time_budget_seconds", &s.TimeBudgetSeconds)
	getBool("enforce_special_rooms", &s.EnforceSpecial)
	getBool("prefer_block_consecutive", &s.PreferBlocks)
	getBool("minimize_room_changes", &s.MinimizeRoomMoves)

	if raw, ok := values["teacher_idle_preference"]; ok {
		if v := strings.TrimSpace(strings.ToLower(raw)); v == "minimize" || v == "maximize" {
			s.IdlePreference = v
		}
	}
	if raw, ok := values["special_room_tokens"]; ok {
		tokens := make([]string, 0, 4)
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) > 0 {
			s.SpecialTokens = tokens
		}
	}

	return s
}

// PresentationSettings drive time-column rendering in exports.
type PresentationSettings struct {
	LessonMinutes int
	BreakMinutes  int
	DayStart      string
	LunchStart    string
	LunchEnd      string
}

// PresentationSettingsFromMap applies stored values over rendering defaults.
func PresentationSettingsFromMap(values map[string]string) PresentationSettings {
	p := PresentationSettings{
		LessonMinutes: 40,
		BreakMinutes:  10,
		DayStart:      "08:30",
		LunchStart:    "12:00",
		LunchEnd:      "13:00",
	}
	if raw, ok := values["lesson_duration_minutes"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 {
			p.LessonMinutes = v
		}
	}
	if raw, ok := values["break_duration_minutes"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v >= 0 {
			p.BreakMinutes = v
		}
	}
	if raw, ok := values["day_start"]; ok && raw != "" {
		p.DayStart = raw
	}
	if raw, ok := values["lunch_start"]; ok && raw != "" {
		p.LunchStart = raw
	}
	if raw, ok := values["lunch_end"]; ok && raw != "" {
		p.LunchEnd = raw
	}
	return p
}
