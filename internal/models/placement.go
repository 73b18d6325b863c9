package models

// Placement is one concrete scheduled lesson-hour. Rows are written only by
// the solver (bulk replace) and the editor (single-row moves and deletes).
// RoomID is nullable: deleting a room keeps the placement with a null RoomID.
// The editor does not flag such placements; its conflict flags skip a nil room.
type Placement struct {
	ID        int64  `db:"id" json:"id"`
	ClassID   int64  `db:"class_id" json:"class_id"`
	TeacherID int64  `db:"teacher_id" json:"teacher_id"`
	CourseID  int64  `db:"course_id" json:"course_id"`
	RoomID    *int64 `db:"room_id" json:"room_id,omitempty"`
	Day       int    `db:"day" json:"day"`
	Period    int    `db:"period" json:"period"`
}

// PlacementDetail joins display names for schedule views and exports.
type PlacementDetail struct {
	Placement
	ClassName    string  `db:"class_name" json:"class_name"`
	ClassSection string  `db:"class_section" json:"class_section"`
	TeacherName  string  `db:"teacher_name" json:"teacher_name"`
	CourseName   string  `db:"course_name" json:"course_name"`
	RoomName     *string `db:"room_name" json:"room_name,omitempty"`
}

// ConflictFlags report which resources a moved placement now shares with
// another placement at the same slot. The move itself is never rolled back;
// the operator keeps authority.
type ConflictFlags struct {
	TeacherConflict bool `json:"teacher_conflict"`
	ClassConflict   bool `json:"class_conflict"`
	RoomConflict    bool `json:"room_conflict"`
}

// Any reports whether at least one flag is set.
func (f ConflictFlags) Any() bool {
	return f.TeacherConflict || f.ClassConflict || f.RoomConflict
}
