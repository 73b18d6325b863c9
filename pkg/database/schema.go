package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// pkColumn returns the auto-increment integer primary key declaration for the
// connected driver.
func pkColumn(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Bootstrap creates the relational schema on first open and seeds the settings
// table with defaults. Safe to call on every start.
func Bootstrap(db *sqlx.DB) error {
	pk := pkColumn(db)

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS classes (
			id %s,
			name TEXT NOT NULL,
			section TEXT NOT NULL,
			weekly_total_hours INTEGER NOT NULL DEFAULT 0,
			UNIQUE(name, section)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS teachers (
			id %s,
			full_name TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			weekly_hours INTEGER NOT NULL DEFAULT 0,
			UNIQUE(full_name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS courses (
			id %s,
			name TEXT NOT NULL,
			weekly_hours INTEGER NOT NULL DEFAULT 0,
			requires_special_room BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE(name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rooms (
			id %s,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'normal',
			UNIQUE(name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assignments (
			id %s,
			course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			class_id INTEGER NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			teacher_id INTEGER NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			weekly_hours INTEGER NOT NULL,
			UNIQUE(course_id, class_id, teacher_id)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS unavailabilities (
			id %s,
			teacher_id INTEGER NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			day INTEGER NOT NULL,
			start_period INTEGER NOT NULL,
			end_period INTEGER NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS placements (
			id %s,
			class_id INTEGER NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			teacher_id INTEGER NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
			course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			room_id INTEGER REFERENCES rooms(id) ON DELETE SET NULL,
			day INTEGER NOT NULL,
			period INTEGER NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS settings (
			id %s,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			UNIQUE(key)
		)`, pk),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	return seedSettings(db)
}

// settingDefaults mirrors the documented settings surface. Values are strings;
// typed access happens in the settings service.
var settingDefaults = [][2]string{
	{"lesson_duration_minutes", "40"},
	{"break_duration_minutes", "10"},
	{"day_start", "08:30"},
	{"day_end", "16:00"},
	{"lunch_start", "12:00"},
	{"lunch_end", "13:00"},
	{"max_daily_periods", "8"},
	{"max_weekly_periods", "40"},
	{"teacher_daily_max", "6"},
	{"teacher_daily_min", "2"},
	{"class_daily_max", "8"},
	{"class_daily_min", "4"},
	{"same_course_daily_max", "2"},
	{"enforce_special_rooms", "1"},
	{"minimize_room_changes", "1"},
	{"prefer_block_consecutive", "1"},
	{"block_max", "2"},
	{"teacher_idle_preference", "minimize"},
	{"time_budget_seconds", "300"},
	{"special_room_tokens", "lab,laboratuvar,workshop"},
}

func seedSettings(db *sqlx.DB) error {
	query := db.Rebind("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING")
	for _, kv := range settingDefaults {
		if _, err := db.Exec(query, kv[0], kv[1]); err != nil {
			return fmt.Errorf("seed setting %s: %w", kv[0], err)
		}
	}
	return nil
}
