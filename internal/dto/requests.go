package dto

// ClassRequest creates or updates a class.
type ClassRequest struct {
	Name             string `json:"name" validate:"required,max=64"`
	Section          string `json:"section" validate:"max=16"`
	WeeklyTotalHours int    `json:"weekly_total_hours" validate:"gte=0,lte=80"`
}

// TeacherRequest creates or updates a teacher.
type TeacherRequest struct {
	FullName    string `json:"full_name" validate:"required,max=128"`
	Subject     string `json:"subject" validate:"max=64"`
	WeeklyHours int    `json:"weekly_hours" validate:"gte=0,lte=60"`
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Name                string `json:"name" validate:"required,max=128"`
	WeeklyHours         int    `json:"weekly_hours" validate:"gte=0,lte=40"`
	RequiresSpecialRoom bool   `json:"requires_special_room"`
}

// RoomRequest creates or updates a room.
type RoomRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Kind string `json:"kind" validate:"required,oneof=normal special"`
}

// AssignmentRequest creates or updates an assignment.
type AssignmentRequest struct {
	CourseID    int64 `json:"course_id" validate:"required,gt=0"`
	ClassID     int64 `json:"class_id" validate:"required,gt=0"`
	TeacherID   int64 `json:"teacher_id" validate:"required,gt=0"`
	WeeklyHours int   `json:"weekly_hours" validate:"required,gt=0,lte=40"`
}

// UnavailabilityRequest creates or updates a teacher unavailability window.
// EndPeriod is exclusive.
type UnavailabilityRequest struct {
	TeacherID   int64 `json:"teacher_id" validate:"required,gt=0"`
	Day         int   `json:"day" validate:"gte=0"`
	StartPeriod int   `json:"start_period" validate:"gte=0"`
	EndPeriod   int   `json:"end_period" validate:"gt=0"`
}

// SettingRequest upserts one setting value.
type SettingRequest struct {
	Value string `json:"value" validate:"required,max=256"`
}

// SolveRequest starts a schedule generation run.
type SolveRequest struct {
	TimeBudgetSeconds int `json:"time_budget_seconds" validate:"gte=0,lte=86400"`
}

// MoveRequest relocates a placement. OnConflict selects what happens when the
// target (day, period, room) slot is already taken: "abort" or "replace".
type MoveRequest struct {
	Day        int    `json:"day" validate:"gte=0"`
	Period     int    `json:"period" validate:"gte=0"`
	RoomID     int64  `json:"room_id" validate:"required,gt=0"`
	OnConflict string `json:"on_conflict" validate:"omitempty,oneof=abort replace"`
}

// LoginRequest authenticates the operator.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}
