package dto

import (
	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/internal/solver"
)

// SolveState enumerates the lifecycle of the background solve job.
type SolveState string

const (
	SolveStateIdle      SolveState = "idle"
	SolveStateRunning   SolveState = "running"
	SolveStateSucceeded SolveState = "succeeded"
	SolveStateFailed    SolveState = "failed"
	SolveStateCancelled SolveState = "cancelled"
)

// SolveStatus is the polled snapshot of the current or last solve run.
type SolveStatus struct {
	JobID    string        `json:"job_id,omitempty"`
	State    SolveState    `json:"state"`
	Percent  int           `json:"percent"`
	Message  string        `json:"message,omitempty"`
	Stats    *solver.Stats `json:"stats,omitempty"`
	ErrorMsg string        `json:"error,omitempty"`
}

// MoveResult reports the outcome of an editor move. The conflict flags are
// advisory: the move has already been applied when they are returned.
type MoveResult struct {
	Placement models.Placement     `json:"placement"`
	Flags     models.ConflictFlags `json:"flags"`
	// ReplacedID is set when an incumbent placement at the target slot was
	// deleted to make room.
	ReplacedID *int64 `json:"replaced_id,omitempty"`
}

// ScheduleGrid is one entity's weekly timetable matrix for API consumers:
// rows are periods, columns are days.
type ScheduleGrid struct {
	Title      string       `json:"title"`
	Days       int          `json:"days"`
	Periods    int          `json:"periods"`
	TimeLabels []string     `json:"time_labels"`
	Cells      [][]GridCell `json:"cells"`
}

// GridCell is one slot of a schedule grid; zero-valued when free.
type GridCell struct {
	PlacementID int64  `json:"placement_id,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	ClassLabel  string `json:"class_label,omitempty"`
	RoomName    string `json:"room_name,omitempty"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
