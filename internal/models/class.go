package models

import "fmt"

// Class is a student group, identified by its (name, section) pair,
// e.g. name "10" section "A".
type Class struct {
	ID               int64  `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	Section          string `db:"section" json:"section"`
	WeeklyTotalHours int    `db:"weekly_total_hours" json:"weekly_total_hours"`
}

// Label renders the display form, e.g. "10/A".
func (c Class) Label() string {
	if c.Section == "" {
		return c.Name
	}
	return fmt.Sprintf("%s/%s", c.Name, c.Section)
}
