package models

// Assignment requires a (course, class, teacher) triple to consume a number
// of weekly lesson-hours. The triple is unique.
type Assignment struct {
	ID          int64 `db:"id" json:"id"`
	CourseID    int64 `db:"course_id" json:"course_id"`
	ClassID     int64 `db:"class_id" json:"class_id"`
	TeacherID   int64 `db:"teacher_id" json:"teacher_id"`
	WeeklyHours int   `db:"weekly_hours" json:"weekly_hours"`
}

// AssignmentDetail enriches an assignment with display names.
type AssignmentDetail struct {
	Assignment
	CourseName   string `db:"course_name" json:"course_name"`
	ClassName    string `db:"class_name" json:"class_name"`
	ClassSection string `db:"class_section" json:"class_section"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
}
